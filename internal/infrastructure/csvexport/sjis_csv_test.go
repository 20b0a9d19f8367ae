package csvexport_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/infrastructure/csvexport"
)

func view(t *testing.T) document.View {
	t.Helper()
	v, err := document.BuildView(entity.Document{
		Number: "QTE-202501-001",
		Items: []entity.Item{
			{Name: "設計", Qty: 2, Unit: "人月", UnitPrice: 800000, TaxRate: entity.TaxRateStandard},
			{Name: "弁当, 特上", Qty: 3, Unit: "個", UnitPrice: 1000, TaxRate: entity.TaxRateReduced},
		},
		Details: entity.EstimateDetails{},
	})
	require.NoError(t, err)
	return v
}

func TestShiftJISRenderer_Decodifica(t *testing.T) {
	out, err := csvexport.NewShiftJISRenderer().Render(context.Background(), view(t))
	require.NoError(t, err)

	utf8, err := decodeSJIS(t, out)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(utf8)).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 6)
	assert.Equal(t, csvexport.Header, records[0])
	assert.Equal(t, []string{"1", "", "設計", "", "2", "人月", "800000", "10", "1600000", "160000"}, records[1])
	assert.Equal(t, "弁当, 特上", records[2][2], "las comas se entrecomillan")
	assert.Equal(t, "1763240", records[5][8])
}

func TestShiftJISRenderer_NoEsUTF8(t *testing.T) {
	out, err := csvexport.NewShiftJISRenderer().Render(context.Background(), view(t))
	require.NoError(t, err)

	var plain bytes.Buffer
	require.NoError(t, csvexport.WriteLines(&plain, view(t)))
	assert.NotEqual(t, plain.Bytes(), out)
}

func decodeSJIS(t *testing.T, sjis []byte) ([]byte, error) {
	t.Helper()
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), sjis)
	return out, err
}
