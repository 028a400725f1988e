// internal/services/ingest_rows_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportAmount(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"1234.56", f(1234.56)},
		{"1.234,56", f(1234.56)},
		{"R$ 2.500,00", f(2500)},
		{"  2500 ", f(2500)},
		{"1,5", f(1.5)},
		{"abc", nil},
		{"", nil},
		{"---", nil},
		{"999999999999", nil}, // above the budget ceiling
		{"-10", nil},
	}

	for _, tc := range cases {
		got := parseImportAmount(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, "input %q", tc.in)
		} else {
			require.NotNil(t, got, "input %q", tc.in)
			assert.InDelta(t, *tc.want, *got, 0.001, "input %q", tc.in)
		}
	}
}

func f(v float64) *float64 { return &v }

func TestParseImportDays(t *testing.T) {
	assert.Equal(t, 10, parseImportDays("10"))
	assert.Equal(t, 15, parseImportDays("15 dias"))
	assert.Equal(t, 0, parseImportDays(""))
	assert.Equal(t, 0, parseImportDays("imediato"))
}

func TestMapRequisitionRowSynonyms(t *testing.T) {
	row := map[string]string{
		"titulo":     "Notebook Dell",
		"setor":      "TI",
		"prioridade": "Alta",
		"valor":      "4.500,00",
		"descricao":  "i7, 16GB RAM",
	}

	mapped, err := mapRequisitionRow(row)
	require.NoError(t, err)
	assert.Equal(t, "Notebook Dell", mapped.Title)
	assert.Equal(t, "TI", mapped.Department)
	assert.Equal(t, "high", mapped.Urgency)
	assert.Equal(t, "i7, 16GB RAM", mapped.Description)
	require.NotNil(t, mapped.Budget)
	assert.InDelta(t, 4500.0, *mapped.Budget, 0.001)
}

func TestMapRequisitionRowEnglishHeaders(t *testing.T) {
	row := map[string]string{
		"title":      "Office chairs",
		"budget":     "1200",
		"urgency":    "low",
		"department": "Facilities",
	}

	mapped, err := mapRequisitionRow(row)
	require.NoError(t, err)
	assert.Equal(t, "Office chairs", mapped.Title)
	assert.Equal(t, "low", mapped.Urgency)
	assert.Equal(t, "Facilities", mapped.Department)
}

func TestMapRequisitionRowSkipsEmptyTitle(t *testing.T) {
	_, err := mapRequisitionRow(map[string]string{"titulo": ""})
	require.Error(t, err)
	assert.True(t, isSkip(err))

	_, err = mapRequisitionRow(map[string]string{"titulo": "ab"})
	require.Error(t, err)
	assert.True(t, isSkip(err))
}

func TestMapRequisitionRowSkipsMetadataMarkers(t *testing.T) {
	_, err := mapRequisitionRow(map[string]string{"titulo": "EMPRESA: ACME Ltda"})
	require.Error(t, err)
	assert.True(t, isSkip(err))

	_, err = mapRequisitionRow(map[string]string{"titulo": "Contato: joao@acme.com"})
	require.Error(t, err)
	assert.True(t, isSkip(err))
}

func TestMapRequisitionRowUnparseableBudgetDegrades(t *testing.T) {
	mapped, err := mapRequisitionRow(map[string]string{
		"titulo":    "Cabos de rede",
		"orcamento": "a combinar",
	})
	require.NoError(t, err)
	assert.Nil(t, mapped.Budget)
}

func TestMapSupplierQuotationRow(t *testing.T) {
	row := map[string]string{
		"fornecedor":       "ACME Suprimentos",
		"requisicao":       "req-202608-001",
		"valor total":      "9.999,90",
		"prazo de entrega": "15 dias",
		"pagamento":        "30/60/90",
	}

	mapped, err := mapSupplierQuotationRow(row)
	require.NoError(t, err)
	assert.Equal(t, "ACME Suprimentos", mapped.SupplierName)
	assert.Equal(t, "REQ-202608-001", mapped.RequestNumber)
	require.NotNil(t, mapped.Amount)
	assert.InDelta(t, 9999.90, *mapped.Amount, 0.001)
	assert.Equal(t, 15, mapped.DeliveryDays)
	assert.Equal(t, "30/60/90", mapped.PaymentTerms)
}

func TestLooksHeaderless(t *testing.T) {
	assert.True(t, looksHeaderless([]string{"Column1", "Column2", ""}))
	assert.True(t, looksHeaderless([]string{"__EMPTY", "__EMPTY_1"}))
	assert.False(t, looksHeaderless([]string{"Titulo", "Valor"}))
	assert.False(t, looksHeaderless([]string{"Column1", "Orcamento"}))
}

func TestRecordsFromRowsWithHeader(t *testing.T) {
	rows := [][]string{
		{},
		{"Título", "Orçamento", "Urgência"},
		{"Notebook", "3500", "alta"},
		{"", "", ""},
		{"Monitor", "900", ""},
	}

	records := recordsFromRows(rows, requisitionPositions)
	require.Len(t, records, 2)
	assert.Equal(t, "Notebook", records[0]["titulo"])
	assert.Equal(t, "3500", records[0]["orcamento"])
	assert.Equal(t, "alta", records[0]["urgencia"])
	assert.Equal(t, "Monitor", records[1]["titulo"])
}

func TestRecordsFromRowsHeaderlessZipsPositionally(t *testing.T) {
	rows := [][]string{
		{"Column1", "Column2", "Column3", "Column4", "Column5"},
		{"Cadeiras", "ergonômicas", "RH", "normal", "800"},
	}

	records := recordsFromRows(rows, requisitionPositions)
	require.Len(t, records, 1)
	assert.Equal(t, "Cadeiras", records[0]["titulo"])
	assert.Equal(t, "RH", records[0]["departamento"])
	assert.Equal(t, "800", records[0]["orcamento"])
}

func TestNormalizeUrgency(t *testing.T) {
	assert.Equal(t, "critical", normalizeUrgency("CRÍTICA"))
	assert.Equal(t, "critical", normalizeUrgency("urgente"))
	assert.Equal(t, "normal", normalizeUrgency("Media"))
	assert.Equal(t, "", normalizeUrgency("whenever"))
}
