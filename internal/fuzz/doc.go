// Package fuzztests houses Go fuzz harnesses for the formatting passes
// (source -> brace normalizer -> comment stripper). Its goal is to smoke test
// robustness and guard against panics on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через format.Source и проверять
// инварианты результата через internal/testkit.
//
// Не делает: запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/format, internal/diag, internal/testkit.

package fuzztests
