package nft

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Collection struct {
	NamePrefix  string      `yaml:"name_prefix"`
	Description string      `yaml:"description"`
	ExternalUrl string      `yaml:"external_url,omitempty"`
	IdTrait     string      `yaml:"id_trait"`
	Attributes  []Attribute `yaml:"attributes,omitempty"`
}

func DefaultCollection() Collection {
	return Collection{
		NamePrefix:  "MetaCore",
		Description: "A unique member of the MetaCore collection.",
		IdTrait:     "ID",
	}
}

// LoadCollection reads a collection template. Fields missing from the file
// keep their default values; an empty path yields the defaults.
func LoadCollection(path string) (Collection, error) {
	collection := DefaultCollection()
	if path == "" {
		return collection, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, fmt.Errorf("failed to read collection file '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, &collection); err != nil {
		return Collection{}, fmt.Errorf("failed to process collection file '%s': %w", path, err)
	}

	if err := collection.Validate(); err != nil {
		return Collection{}, fmt.Errorf("invalid collection file '%s': %w", path, err)
	}

	return collection, nil
}

func (c Collection) Validate() error {
	if c.NamePrefix == "" {
		return errors.New("name_prefix is required")
	}
	if c.IdTrait == "" {
		return errors.New("id_trait is required")
	}
	for i, attribute := range c.Attributes {
		if attribute.TraitType == "" {
			return fmt.Errorf("attribute %d has no trait_type", i)
		}
	}
	return nil
}
