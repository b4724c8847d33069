package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Форматирование
	FmtInfo                     Code = 1000
	FmtBraceMerged              Code = 1001
	FmtDiscardedBraceContent    Code = 1002
	FmtUnterminatedBlockComment Code = 1003
	FmtBlockCommentRemoved      Code = 1004
	FmtCodeAfterCommentCloser   Code = 1005

	// Ошибки I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOEncodingError  Code = 4003

	// Ошибки проекта
	ProjInfo            Code = 5000
	ProjMissingDir      Code = 5001
	ProjInvalidManifest Code = 5002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		FmtInfo:                     "Formatter information",
		FmtBraceMerged:              "Opening brace moved to previous line",
		FmtDiscardedBraceContent:    "Text sharing a line with a moved brace was dropped",
		FmtUnterminatedBlockComment: "Unterminated block comment",
		FmtBlockCommentRemoved:      "Block comment removed",
		FmtCodeAfterCommentCloser:   "Code after block comment closer was removed",
		IOLoadFileError:             "I/O load file error",
		IOWriteFileError:            "I/O write file error",
		IOEncodingError:             "Source encoding error",
		ProjInfo:                    "Project information",
		ProjMissingDir:              "Project directory not found",
		ProjInvalidManifest:         "Invalid cbrace.toml",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
