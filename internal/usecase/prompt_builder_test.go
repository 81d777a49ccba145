package usecase

import (
	"strings"
	"testing"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestPromptBuilder_Build(t *testing.T) {
	product := domain.ProductConfig{
		Name:        "Xiaomi Smart Projector L1 PRO Full HD Noir",
		Competitors: []string{"Fnac", " Cdiscount ", "", "Rue du Commerce"},
		TargetPrice: decimal.NewFromInt(350),
	}

	prompt := NewPromptBuilder(false).Build(product)

	t.Run("names the product", func(t *testing.T) {
		if !strings.Contains(prompt, "du Xiaomi Smart Projector L1 PRO Full HD Noir sur") {
			t.Errorf("prompt does not name the product:\n%s", prompt)
		}
	})

	t.Run("lists competitors in order", func(t *testing.T) {
		if !strings.Contains(prompt, "suivants : Fnac, Cdiscount, Rue du Commerce.") {
			t.Errorf("prompt does not list competitors in order:\n%s", prompt)
		}
	})

	t.Run("asks for the parseable line format", func(t *testing.T) {
		want := "Site: [Nom] | Prix: [XX.XX€] | Stock: [Disponible/Rupture]"
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing format line %q", want)
		}
	})

	t.Run("template line is not itself a price line", func(t *testing.T) {
		if got := ExtractAt(prompt, product.Name, captureTime); len(got) != 0 {
			t.Errorf("prompt parsed into %d observations, want 0", len(got))
		}
	})
}

func TestPromptBuilder_NoCompetitors(t *testing.T) {
	prompt := NewPromptBuilder(true).Build(domain.ProductConfig{Name: "Widget"})

	if !strings.Contains(prompt, "suivants : .") {
		t.Errorf("unexpected competitor list:\n%s", prompt)
	}
}

func TestPromptBuilder_DoesNotMutateProduct(t *testing.T) {
	competitors := []string{" Fnac ", "Amazon"}
	NewPromptBuilder(false).Build(domain.ProductConfig{Name: "X", Competitors: competitors})

	if competitors[0] != " Fnac " {
		t.Errorf("competitors mutated: %q", competitors)
	}
}
