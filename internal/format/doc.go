// Package format contains the FlowLang indentation engine: a single-pass line
// transducer that re-indents source text from keyword cues alone.
//
// Назначение: канонический отступ строк по ключевым словам do/then/end/else.
// Не делает: разбор выражений, проверку синтаксиса, расстановку пробелов вокруг
// операторов (см. internal/spacing) или IO.
// Зависимости: нет.
package format
