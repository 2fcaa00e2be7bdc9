package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"trooplogistics/pkg/contracts/domain"
)

// VocabularyFile is the on-disk form of the product vocabulary and labels.
// Labels left out of the file keep their defaults.
type VocabularyFile struct {
	Products []domain.Product `yaml:"products" validate:"required,min=1,dive"`
	Labels   *domain.Labels   `yaml:"labels,omitempty"`
}

// DefaultVocabulary returns the canonical product table. Aliases are listed in
// the order they are tried against column names.
func DefaultVocabulary() domain.Vocabulary {
	return domain.Vocabulary{Products: []domain.Product{
		{Name: "Adventurefuls", Aliases: []string{"Adventurefuls"}},
		{Name: "Toast-Yay!", Aliases: []string{"Toast-Yay"}},
		{Name: "Lemon-Ups", Aliases: []string{"Lemon-Ups", "Lemonades"}},
		{Name: "Trefoils", Aliases: []string{"Trefoils", "Shortbread"}},
		{Name: "Do-si-dos", Aliases: []string{"Do-si-dos", "Peanut Butter Sandwich"}},
		{Name: "Samoas", Aliases: []string{"Samoas", "Caramel deLites"}},
		{Name: "Tagalongs", Aliases: []string{"Tagalongs", "Peanut Butter Patties"}},
		{Name: "Thin Mints", Aliases: []string{"Thin Mints"}},
		{Name: "Girl Scout S'mores", Aliases: []string{"S'mores", "Smores"}},
		{Name: "Toffee-tastic", Aliases: []string{"Toffee-tastic", "Caramel Chocolate Chip"}},
		{Name: "Gluten Free", Aliases: []string{"Gluten Free"}},
	}}
}

// LoadVocabulary returns the vocabulary and labels in use. An empty path
// returns the built-in defaults.
func LoadVocabulary(path string) (domain.Vocabulary, domain.Labels, error) {
	if path == "" {
		return DefaultVocabulary(), domain.DefaultLabels(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Vocabulary{}, domain.Labels{}, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes and validates a YAML vocabulary document.
func ParseVocabulary(data []byte) (domain.Vocabulary, domain.Labels, error) {
	var file VocabularyFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return domain.Vocabulary{}, domain.Labels{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return domain.Vocabulary{}, domain.Labels{}, fmt.Errorf("invalid vocabulary: %w", err)
	}

	vocab := domain.Vocabulary{Products: file.Products}
	seen := make(map[string]bool, len(file.Products))
	for _, name := range vocab.Names() {
		if seen[name] {
			return domain.Vocabulary{}, domain.Labels{}, fmt.Errorf("invalid vocabulary: product %q declared twice", name)
		}
		seen[name] = true
	}

	labels := domain.DefaultLabels()
	if file.Labels != nil {
		labels = mergeLabels(labels, *file.Labels)
	}

	return vocab, labels, nil
}

// mergeLabels replaces each default label list the override sets.
func mergeLabels(base, override domain.Labels) domain.Labels {
	pick := func(def, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return def
	}
	return domain.Labels{
		Channel:          pick(base.Channel, override.Channel),
		AcceptedChannels: pick(base.AcceptedChannels, override.AcceptedChannels),
		Money:            pick(base.Money, override.Money),
		Recipient:        pick(base.Recipient, override.Recipient),
		Customer:         pick(base.Customer, override.Customer),
		OrderID:          pick(base.OrderID, override.OrderID),
		Contact:          pick(base.Contact, override.Contact),
	}
}
