package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lingokids/review-api/internal/service/review"
	"gopkg.in/yaml.v3"
)

// Deck is a deck file:
//
//	title: Colours
//	items:
//	  - id: 0b5c3f0e-5d0a-4a55-9d0c-3a8d8f6b1c11
//	    front: rojo
//	    back: red
type Deck struct {
	Title string            `yaml:"title"`
	Items []review.DeckItem `yaml:"items"`
}

// ErrEmptyDeck is returned for a deck file without items.
var ErrEmptyDeck = errors.New("deck has no items")

// loadDeckFile reads and parses the deck at path.
func loadDeckFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	deck, err := parseDeck(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("deck %s: %w", path, err)
	}
	return deck, nil
}

// parseDeck decodes a deck, rejecting unknown keys. Item content is checked
// later by review.Service.LoadDeck.
func parseDeck(r io.Reader) (*Deck, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var deck Deck
	if err := dec.Decode(&deck); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDeck
		}
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	if len(deck.Items) == 0 {
		return nil, ErrEmptyDeck
	}
	return &deck, nil
}
