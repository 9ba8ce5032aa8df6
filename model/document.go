package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Document represents a source document such as a 10-K section
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	Ticker    string    `json:"ticker,omitempty"`
	Section   string    `json:"section,omitempty"`
	URL       string    `json:"url,omitempty"`
	Year      string    `json:"year,omitempty"`
	Content   string    `json:"content,omitempty" db:"-"` // only used while processing
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocumentFromFile reads a file and creates a Document for the given ticker.
// The title defaults to the filename without extension and the section to the title.
func NewDocumentFromFile(filePath string, ticker string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}

	return &Document{
		Title:    title,
		Source:   filePath,
		Ticker:   ticker,
		Section:  title,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}

// ChunkMetadata returns the metadata stored with every chunk of the document.
// Document fields take precedence over free-form metadata.
func (d *Document) ChunkMetadata() Metadata {
	out := Metadata{}
	for key, value := range d.Metadata {
		out[key] = value
	}

	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("ticker", d.Ticker)
	set("section", d.Section)
	set("source", d.Source)
	set("url", d.URL)
	set("year", d.Year)
	set("title", d.Title)

	return out
}
