package nota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/notafolio/backend/src/models"
)

func TestExtractAssets(t *testing.T) {
	parser := NewParser()

	t.Run("codes inside recognized blocks", func(t *testing.T) {
		text := "NOTA DE CORRETAGEM\n" +
			"RESUMO DAS OPERAÇÕES\n" +
			"PETR4 ON 100 10,00\n" +
			"BOVA11 CI 50 101,20\n" +
			"TAEE11 UNT 30 35,00\n" +
			"PETRB36 OPCAO 100 1,50\n"

		result := parser.ExtractAssets(text)

		require.True(t, result.InRecognizedBlock)
		codes := make(map[string]models.InstrumentType)
		for _, asset := range result.Assets {
			codes[asset.Code] = asset.Type
		}
		assert.Equal(t, models.InstrumentStock, codes["PETR4"])
		assert.Equal(t, models.InstrumentETF, codes["BOVA11"])
		assert.Equal(t, models.InstrumentREITFund, codes["TAEE11"])
		assert.Equal(t, models.InstrumentOption, codes["PETRB36"])
	})

	t.Run("codes outside any block are ignored", func(t *testing.T) {
		// PETR4 appears before the first marker; only VALE3 is in a span.
		text := "PETR4 rodapé da página\n" +
			"RESUMO DAS OPERAÇÕES\n" +
			"VALE3 ON 200 61,10\n"

		result := parser.ExtractAssets(text)

		require.True(t, result.InRecognizedBlock)
		require.Len(t, result.Assets, 1)
		assert.Equal(t, "VALE3", result.Assets[0].Code)
	})

	t.Run("duplicate codes reported once", func(t *testing.T) {
		text := "RESUMO DAS OPERAÇÕES\n" +
			"PETR4 100\nPETR4 200\n" +
			"COMPRAS\nPETR4 300\n"

		result := parser.ExtractAssets(text)

		require.Len(t, result.Assets, 1)
		assert.Equal(t, "PETR4", result.Assets[0].Code)
	})

	t.Run("uncatalogued codes dropped", func(t *testing.T) {
		text := "RESUMO DAS OPERAÇÕES\nZZZZ3 100\nWINF20 5\nPETR4 100\n"

		result := parser.ExtractAssets(text)

		// ZZZZ3 and WINF20 match shape patterns, so the block counts as
		// recognized, but only the catalogued code survives.
		require.True(t, result.InRecognizedBlock)
		require.Len(t, result.Assets, 1)
		assert.Equal(t, "PETR4", result.Assets[0].Code)
	})

	t.Run("no markers means extraction failure", func(t *testing.T) {
		result := parser.ExtractAssets("texto qualquer sem marcadores PETR4")

		assert.False(t, result.InRecognizedBlock)
		assert.Empty(t, result.Assets)
		assert.Empty(t, result.BlockOffsets)
	})

	t.Run("markers without asset tokens", func(t *testing.T) {
		result := parser.ExtractAssets("NOTA DE CORRETAGEM\ntexto livre sem códigos\n")

		assert.False(t, result.InRecognizedBlock)
		assert.Empty(t, result.Assets)
	})

	t.Run("lowercase text is uppercased before scanning", func(t *testing.T) {
		result := parser.ExtractAssets("resumo das operações\npetr4 on 100\n")

		require.True(t, result.InRecognizedBlock)
		require.Len(t, result.Assets, 1)
		assert.Equal(t, "PETR4", result.Assets[0].Code)
	})
}

func TestHasRecognizedBlock(t *testing.T) {
	assert.True(t, HasRecognizedBlock("segue a NOTA DE CORRETAGEM do dia"))
	assert.True(t, HasRecognizedBlock("negócios realizados"))
	assert.False(t, HasRecognizedBlock("documento sem nenhum marcador"))
	assert.False(t, HasRecognizedBlock(""))
}
