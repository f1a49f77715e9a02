package service

import (
	"strings"
	"time"

	"trilha/internal/registration/models"
	dErrors "trilha/pkg/domain-errors"
)

// Column order of the exported spreadsheet.
const csvHeader = "Nome,WhatsApp,Email,Contato Emergencia,Tel Emergencia,Aceitou Termo"

// BuildCSV renders the records in their given ordering as one header line
// plus one line per record. Every field is double-quoted regardless of
// content; the organizers' spreadsheet import expects it that way.
func BuildCSV(records []*models.Registration) ([]byte, error) {
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "nothing to export")
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	for _, r := range records {
		b.WriteByte('\n')
		writeRow(&b,
			r.Nome,
			r.Whatsapp,
			r.Email,
			r.EmergenciaNome,
			r.EmergenciaTel,
			yesNo(r.TermoImagem),
		)
	}
	return []byte(b.String()), nil
}

// ExportFilename embeds the given date in the download name.
func ExportFilename(now time.Time) string {
	return "lista_inscritos_" + now.Format("2006-01-02") + ".csv"
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// The release flag renders as the localized token the organizers read, not a
// literal boolean.
func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
