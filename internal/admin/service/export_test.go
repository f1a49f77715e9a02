package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trilha/internal/registration/models"
	dErrors "trilha/pkg/domain-errors"
)

func TestBuildCSVRefusesEmptyList(t *testing.T) {
	blob, err := BuildCSV(nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Contains(t, err.Error(), "nothing to export")
	assert.Nil(t, blob, "no blob may be produced for zero records")
}

func TestBuildCSVProducesHeaderPlusOneLinePerRecord(t *testing.T) {
	records := []*models.Registration{
		{Nome: "Ana Silva", Whatsapp: "81999998888", Email: "ana@gmail.com", EmergenciaNome: "Zeca", EmergenciaTel: "81988887777", TermoImagem: true},
		{Nome: "Bruno Costa", Whatsapp: "81911112222", Email: "bruno@outlook.com", EmergenciaNome: "Rita", EmergenciaTel: "81933334444", TermoImagem: false},
	}

	blob, err := BuildCSV(records)
	require.NoError(t, err)

	lines := strings.Split(string(blob), "\n")
	require.Len(t, lines, 3, "expected 1 header + N record lines")

	assert.Equal(t, "Nome,WhatsApp,Email,Contato Emergencia,Tel Emergencia,Aceitou Termo", lines[0])
	assert.Equal(t, `"Ana Silva","81999998888","ana@gmail.com","Zeca","81988887777","Sim"`, lines[1])
	assert.Equal(t, `"Bruno Costa","81911112222","bruno@outlook.com","Rita","81933334444","Não"`, lines[2])
}

func TestBuildCSVQuotesEveryField(t *testing.T) {
	// A comma inside a field must stay inside its quotes, not split the row.
	records := []*models.Registration{
		{Nome: "Silva, Ana", Whatsapp: "81999998888", Email: "ana@gmail.com", EmergenciaNome: "Zeca", EmergenciaTel: "81988887777", TermoImagem: true},
	}
	blob, err := BuildCSV(records)
	require.NoError(t, err)

	row := strings.Split(string(blob), "\n")[1]
	assert.Equal(t, `"Silva, Ana","81999998888","ana@gmail.com","Zeca","81988887777","Sim"`, row)
}

func TestBuildCSVEscapesEmbeddedQuotes(t *testing.T) {
	records := []*models.Registration{
		{Nome: `Ana "Aninha" Silva`, Whatsapp: "81999998888", Email: "ana@gmail.com", EmergenciaNome: "Zeca", EmergenciaTel: "81988887777", TermoImagem: true},
	}
	blob, err := BuildCSV(records)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"Ana ""Aninha"" Silva"`)
}

func TestExportFilenameEmbedsDate(t *testing.T) {
	now := time.Date(2026, time.January, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "lista_inscritos_2026-01-10.csv", ExportFilename(now))
}
