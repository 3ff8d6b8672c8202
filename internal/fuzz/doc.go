// Package fuzztests houses Go fuzz harnesses for the analysis pipeline
// (source -> parser -> binder -> rules). They guard against panics, hangs and
// round-trip violations on arbitrary inputs.
//
// Назначение: загружать байты в FileSet, строить дерево и прогонять каталог
// правил.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
