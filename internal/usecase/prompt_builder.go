package usecase

import (
	"fmt"
	"log"
	"strings"

	"github.com/pricewatch/backend/internal/domain"
)

// pricePromptTemplate asks for one line per competitor in the format ParseLine reads
const pricePromptTemplate = `Recherche les prix actuels du %s sur les sites suivants : %s.

Pour chaque site où le produit est disponible, donne-moi :
- Le nom du site
- Le prix exact en euros
- La disponibilité (en stock/rupture)

Format de réponse souhaité :
Site: [Nom] | Prix: [XX.XX€] | Stock: [Disponible/Rupture]

Si un site n'a pas le produit, indique "Non disponible".`

// PromptBuilder renders the completion prompt for a product
type PromptBuilder struct {
	enableDebugLogging bool
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder(enableDebugLogging bool) *PromptBuilder {
	return &PromptBuilder{
		enableDebugLogging: enableDebugLogging,
	}
}

// Build returns the prompt listing the product's competitors in catalog order
func (b *PromptBuilder) Build(product domain.ProductConfig) string {
	competitors := make([]string, 0, len(product.Competitors))
	for _, c := range product.Competitors {
		if c = strings.TrimSpace(c); c != "" {
			competitors = append(competitors, c)
		}
	}

	prompt := fmt.Sprintf(pricePromptTemplate, product.Name, strings.Join(competitors, ", "))

	if b.enableDebugLogging {
		log.Printf("[PROMPT] %q -> %d competitors, %d chars", product.Name, len(competitors), len(prompt))
	}

	return prompt
}
