package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandType enumerates the supported chat commands.
type CommandType string

const (
	CommandCreate        CommandType = "create"
	CommandUpdate        CommandType = "update"
	CommandDelete        CommandType = "delete"
	CommandReportDaily   CommandType = "rekap_hari"
	CommandReportMonthly CommandType = "rekap_bulan"
	CommandReportHourly  CommandType = "rekap_jam"
	CommandExport        CommandType = "export"
)

// ErrUnrecognized marks text that is not a command at all. The dispatcher
// stays silent on it.
var ErrUnrecognized = errors.New("unrecognized command")

// ErrBadFormat and ErrBadQuantity classify malformed commands; both are
// always wrapped in a ParseError carrying the user-facing hint.
var (
	ErrBadFormat   = errors.New("bad command format")
	ErrBadQuantity = errors.New("quantity is not a number")
)

// ParseError pairs a classification with the exact reply text the operator
// should receive.
type ParseError struct {
	Reason error
	Hint   string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%v: %s", e.Reason, e.Hint) }

func (e *ParseError) Unwrap() error { return e.Reason }

// Command is a tagged variant: Type selects which payload pointer is set.
type Command struct {
	Type   CommandType
	Raw    string
	Create *CreateArgs
	Update *UpdateArgs
	Delete *DeleteArgs
	Report *ReportArgs
	Export *ExportArgs
}

// Mutating reports whether the command changes the record store and must
// pass the admin gate first.
func (c Command) Mutating() bool {
	switch c.Type {
	case CommandCreate, CommandUpdate, CommandDelete:
		return true
	default:
		return false
	}
}

// CreateArgs holds a !line command. QtyToken is validated downstream so a
// well-formed command with a bad quantity is still distinguishable from a
// missing token.
type CreateArgs struct {
	Line      string
	Product   string
	StartTime string
	EndTime   string
	QtyToken  string
}

// UpdateArgs holds a !ubah command. Line already has its "line" prefix
// stripped.
type UpdateArgs struct {
	ID        string
	Line      string
	Product   string
	StartTime string
	EndTime   string
	Quantity  int
}

// DeleteArgs holds a !hapus command.
type DeleteArgs struct {
	ID string
}

// ReportArgs holds any !rekap variant. Period is empty when the operator
// omitted it; the dispatcher substitutes the current day or month.
type ReportArgs struct {
	Period string
}

// ExportMode selects the export window.
type ExportMode string

const (
	ExportDaily   ExportMode = "hari"
	ExportMonthly ExportMode = "bulan"
)

// ExportArgs holds a !export command. Period follows the same convention as
// ReportArgs.
type ExportArgs struct {
	Mode   ExportMode
	Period string
}

const (
	createHint = "❌ Format salah. Contoh:\n!line1 BotolA 08:00 12:00 500"
	updateHint = "❌ Format salah.\nContoh:\n!ubah 7GHD21 line1 BotolB 09:00 13:00 600"
	qtyHint    = "❌ Qty harus berupa angka."
	deleteHint = "❌ Gunakan: !hapus ABC123"
	exportHint = "❌ Gunakan: !export hari|bulan [tanggal]"
)

// ParseCommand turns one inbound message into a Command. It is pure: no
// clock, no I/O. Date tokens typed as DD-MM-YYYY are reversed here into the
// YYYY-MM-DD order the store uses.
func ParseCommand(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	cmd := Command{Raw: text}

	if trimmed == "!rekap jam" {
		cmd.Type = CommandReportHourly
		cmd.Report = &ReportArgs{}
		return cmd, nil
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		return cmd, ErrUnrecognized
	}

	switch {
	case strings.HasPrefix(tokens[0], "!line"):
		return parseCreate(cmd, tokens)
	case tokens[0] == "!ubah":
		return parseUpdate(cmd, tokens)
	case tokens[0] == "!hapus":
		return parseDelete(cmd, tokens)
	case tokens[0] == "!rekap":
		return parseReport(cmd, tokens)
	case tokens[0] == "!export":
		return parseExport(cmd, tokens)
	default:
		return cmd, ErrUnrecognized
	}
}

func parseCreate(cmd Command, tokens []string) (Command, error) {
	if len(tokens) < 5 {
		return cmd, &ParseError{Reason: ErrBadFormat, Hint: createHint}
	}

	cmd.Type = CommandCreate
	cmd.Create = &CreateArgs{
		Line:      strings.TrimPrefix(tokens[0], "!line"),
		Product:   tokens[1],
		StartTime: tokens[2],
		EndTime:   tokens[3],
		QtyToken:  tokens[4],
	}
	return cmd, nil
}

func parseUpdate(cmd Command, tokens []string) (Command, error) {
	if len(tokens) < 7 {
		return cmd, &ParseError{Reason: ErrBadFormat, Hint: updateHint}
	}

	qty, err := strconv.Atoi(tokens[6])
	if err != nil {
		return cmd, &ParseError{Reason: ErrBadQuantity, Hint: qtyHint}
	}

	cmd.Type = CommandUpdate
	cmd.Update = &UpdateArgs{
		ID:        tokens[1],
		Line:      strings.TrimPrefix(tokens[2], "line"),
		Product:   tokens[3],
		StartTime: tokens[4],
		EndTime:   tokens[5],
		Quantity:  qty,
	}
	return cmd, nil
}

func parseDelete(cmd Command, tokens []string) (Command, error) {
	if len(tokens) < 2 {
		return cmd, &ParseError{Reason: ErrBadFormat, Hint: deleteHint}
	}

	cmd.Type = CommandDelete
	cmd.Delete = &DeleteArgs{ID: tokens[1]}
	return cmd, nil
}

func parseReport(cmd Command, tokens []string) (Command, error) {
	if len(tokens) < 2 {
		return cmd, ErrUnrecognized
	}

	switch tokens[1] {
	case "hari":
		period := ""
		if len(tokens) > 2 {
			period = ReverseDate(tokens[2])
		}
		cmd.Type = CommandReportDaily
		cmd.Report = &ReportArgs{Period: period}
		return cmd, nil
	case "bulan":
		period := ""
		if len(tokens) > 2 {
			period = tokens[2]
		}
		cmd.Type = CommandReportMonthly
		cmd.Report = &ReportArgs{Period: period}
		return cmd, nil
	default:
		// "!rekap jam" with trailing text lands here as well.
		return cmd, ErrUnrecognized
	}
}

func parseExport(cmd Command, tokens []string) (Command, error) {
	if len(tokens) < 2 {
		return cmd, &ParseError{Reason: ErrBadFormat, Hint: exportHint}
	}

	mode := ExportMode(tokens[1])
	if mode != ExportDaily && mode != ExportMonthly {
		return cmd, &ParseError{Reason: ErrBadFormat, Hint: exportHint}
	}

	period := ""
	if len(tokens) > 2 {
		period = tokens[2]
		if mode == ExportDaily {
			period = ReverseDate(period)
		}
	}

	cmd.Type = CommandExport
	cmd.Export = &ExportArgs{Mode: mode, Period: period}
	return cmd, nil
}

// ReverseDate flips an operator-typed DD-MM-YYYY token into the stored
// YYYY-MM-DD order. Tokens with a different segment count are reversed
// verbatim, matching the original bot.
func ReverseDate(token string) string {
	parts := strings.Split(token, "-")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "-")
}
