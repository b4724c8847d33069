// Package format contains the line-level passes that rewrite C sources:
// brace normalization (a dangling "{" moves to the end of the previous line)
// and optional comment stripping.
//
// Назначение: чистые преобразования []string -> []string без состояния пакета.
// Не делает: разбора C, учёта строковых литералов, препроцессора или IO.
// Зависимости: internal/diag, internal/source.
package format
