// internal/services/ingest_rows.go
package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Spreadsheets arrive hand-edited and inconsistent, so the row mappers
// here are deliberately heuristic: each target field is resolved by
// trying an ordered list of Portuguese/English header synonyms, first
// non-empty cell wins. Everything in this file is pure so the
// heuristics can be tested against fixed rows without touching storage.

const maxImportBudget = 99999999.99

var requisitionSynonyms = map[string][]string{
	"title":       {"titulo", "title", "item", "produto", "material", "descricao do item"},
	"description": {"descricao", "description", "detalhes", "especificacao", "observacoes"},
	"department":  {"departamento", "department", "setor", "area"},
	"urgency":     {"urgencia", "urgency", "prioridade", "priority"},
	"budget":      {"orcamento", "budget", "valor estimado", "valor", "preco", "custo"},
}

var supplierQuotationSynonyms = map[string][]string{
	"supplier":      {"fornecedor", "supplier", "empresa", "razao social"},
	"request":       {"requisicao", "numero requisicao", "numero da requisicao", "request", "pedido", "numero"},
	"amount":        {"valor total", "valor", "total", "preco", "price", "amount"},
	"delivery":      {"prazo entrega", "prazo de entrega", "prazo", "entrega", "delivery"},
	"payment_terms": {"condicoes de pagamento", "condicoes", "pagamento", "payment terms"},
	"notes":         {"observacoes", "notas", "notes", "comentarios"},
}

// Positional fallbacks used when the header row turns out to be
// garbage (see looksHeaderless).
var requisitionPositions = []string{"titulo", "descricao", "departamento", "urgencia", "orcamento"}
var supplierQuotationPositions = []string{"fornecedor", "requisicao", "valor", "prazo", "condicoes"}

var metadataMarkers = []string{"EMPRESA:", "CONTATO:", "TELEFONE:", "DATA:", "CNPJ:"}

var headerAccents = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

var placeholderHeader = regexp.MustCompile(`^(column|coluna|field)[ _]?\d*$|^__empty(_\d+)?$|^unnamed.*$`)

type requisitionRow struct {
	Title       string
	Description string
	Department  string
	Urgency     string
	Budget      *float64
}

type supplierQuotationRow struct {
	SupplierName  string
	RequestNumber string
	Amount        *float64
	DeliveryDays  int
	PaymentTerms  string
	Notes         string
}

// rowError marks a row that must be counted as skipped rather than
// created. The reason ends up in logs, not in the batch error list.
type rowError struct {
	reason string
}

func (e *rowError) Error() string { return e.reason }

func skipRow(format string, args ...interface{}) error {
	return &rowError{reason: fmt.Sprintf(format, args...)}
}

func isSkip(err error) bool {
	_, ok := err.(*rowError)
	return ok
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headerAccents.Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// resolveField walks the synonym list and returns the first non-empty
// cell. Row keys are expected to be pre-normalized.
func resolveField(row map[string]string, synonyms []string) string {
	for _, key := range synonyms {
		if v, ok := row[key]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// looksHeaderless reports whether every header cell is empty or a
// generated placeholder, meaning the sheet has no real header row and
// columns must be zipped positionally.
func looksHeaderless(headers []string) bool {
	for _, h := range headers {
		h = normalizeHeader(h)
		if h == "" {
			continue
		}
		if !placeholderHeader.MatchString(h) {
			return false
		}
	}
	return true
}

func isMetadataRow(value string) bool {
	upper := strings.ToUpper(value)
	for _, marker := range metadataMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// parseImportAmount coerces hand-typed money cells ("R$ 1.234,56",
// "1234.56", "  2500 ") to a float. Unparseable or out-of-range values
// degrade to nil so the row survives with the field unset.
func parseImportAmount(raw string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return nil
	}

	// Brazilian format uses '.' for thousands and ',' for decimals.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 || value > maxImportBudget {
		return nil
	}
	return &value
}

func parseImportDays(raw string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0
	}
	days, err := strconv.Atoi(digits)
	if err != nil || days < 0 || days > 3650 {
		return 0
	}
	return days
}

func mapRequisitionRow(row map[string]string) (*requisitionRow, error) {
	title := resolveField(row, requisitionSynonyms["title"])
	if len(strings.TrimSpace(title)) < 3 {
		return nil, skipRow("titulo vazio ou muito curto")
	}
	if isMetadataRow(title) {
		return nil, skipRow("linha de metadados: %q", title)
	}

	mapped := &requisitionRow{
		Title:       strings.TrimSpace(title),
		Description: resolveField(row, requisitionSynonyms["description"]),
		Department:  resolveField(row, requisitionSynonyms["department"]),
		Urgency:     normalizeUrgency(resolveField(row, requisitionSynonyms["urgency"])),
		Budget:      parseImportAmount(resolveField(row, requisitionSynonyms["budget"])),
	}
	return mapped, nil
}

func mapSupplierQuotationRow(row map[string]string) (*supplierQuotationRow, error) {
	supplier := resolveField(row, supplierQuotationSynonyms["supplier"])
	if len(strings.TrimSpace(supplier)) < 3 {
		return nil, skipRow("fornecedor vazio ou muito curto")
	}
	if isMetadataRow(supplier) {
		return nil, skipRow("linha de metadados: %q", supplier)
	}

	mapped := &supplierQuotationRow{
		SupplierName:  strings.TrimSpace(supplier),
		RequestNumber: strings.ToUpper(strings.TrimSpace(resolveField(row, supplierQuotationSynonyms["request"]))),
		Amount:        parseImportAmount(resolveField(row, supplierQuotationSynonyms["amount"])),
		DeliveryDays:  parseImportDays(resolveField(row, supplierQuotationSynonyms["delivery"])),
		PaymentTerms:  resolveField(row, supplierQuotationSynonyms["payment_terms"]),
		Notes:         resolveField(row, supplierQuotationSynonyms["notes"]),
	}
	return mapped, nil
}

func normalizeUrgency(raw string) string {
	switch normalizeHeader(raw) {
	case "baixa", "low":
		return "low"
	case "alta", "high":
		return "high"
	case "critica", "critical", "urgente":
		return "critical"
	case "normal", "media", "medium":
		return "normal"
	default:
		return ""
	}
}

// recordsFromRows turns a raw cell grid into row-of-maps keyed by the
// normalized header. When the header row is nothing but generated
// placeholders it is discarded and the remaining rows are zipped
// against the positional field list instead.
func recordsFromRows(rows [][]string, positions []string) []map[string]string {
	start := 0
	for start < len(rows) && emptyRow(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil
	}

	headers := rows[start]

	if looksHeaderless(headers) {
		return zipPositional(rows[start+1:], positions)
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = normalizeHeader(h)
	}

	var records []map[string]string
	for _, row := range rows[start+1:] {
		if emptyRow(row) {
			continue
		}
		record := make(map[string]string, len(keys))
		for i, key := range keys {
			if key == "" || i >= len(row) {
				continue
			}
			record[key] = row[i]
		}
		records = append(records, record)
	}
	return records
}

func zipPositional(rows [][]string, positions []string) []map[string]string {
	var records []map[string]string
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		record := make(map[string]string, len(positions))
		for i, key := range positions {
			if i < len(row) {
				record[key] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
