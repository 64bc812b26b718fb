// Package fuzztests houses Go fuzz harnesses for the formatter pipeline
// (lexer -> spacing -> indentation). Its goal is to guard the formatter
// invariants on arbitrary input: idempotence, stable line count and
// untouched line content.
//
// Назначение: прогонять произвольные байты через lexer, spacing и format и
// проверять инварианты результата.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/lexer, internal/spacing, internal/format.

package fuzztests
