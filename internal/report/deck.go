// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles per-file slides into a single report document
// and drives the batch run over a file-index range.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Deck is the report document under construction: one worksheet per slide,
// each with a title cell, embedded plot images laid out side by side, and a
// caption cell below them. Built incrementally, persisted once by Save.
type Deck struct {
	f      *excelize.File
	slides []string
}

// Cell anchors for a slide: title, up to three pictures, caption.
const (
	cellTitle   = "A1"
	cellCaption = "A30"
)

var pictureAnchors = []string{"A3", "J3", "S3"}

// NewDeck returns an empty document.
func NewDeck() *Deck {
	return &Deck{f: excelize.NewFile()}
}

// AddSlide appends a slide and writes its title, returning the sheet name
// for subsequent picture and caption calls.
func (d *Deck) AddSlide(title string) (string, error) {
	name := fmt.Sprintf("Slide %d", len(d.slides)+1)
	if _, err := d.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("adding sheet %s: %w", name, err)
	}
	if err := d.f.SetCellValue(name, cellTitle, title); err != nil {
		return "", fmt.Errorf("writing title: %w", err)
	}
	d.slides = append(d.slides, name)
	return name, nil
}

// AddPictures embeds up to three PNG images side by side on the slide.
func (d *Deck) AddPictures(sheet string, images [][]byte) error {
	for i, img := range images {
		if i >= len(pictureAnchors) {
			break
		}
		pic := &excelize.Picture{
			Extension: ".png",
			File:      img,
			Format:    &excelize.GraphicOptions{ScaleX: 0.75, ScaleY: 0.75},
		}
		if err := d.f.AddPictureFromBytes(sheet, pictureAnchors[i], pic); err != nil {
			return fmt.Errorf("embedding picture %d: %w", i+1, err)
		}
	}
	return nil
}

// AddCaption writes the parameter caption below the pictures.
func (d *Deck) AddCaption(sheet, text string) error {
	if text == "" {
		text = "No parameters available"
	}
	if err := d.f.SetCellValue(sheet, cellCaption, text); err != nil {
		return fmt.Errorf("writing caption: %w", err)
	}
	return nil
}

// SlideCount returns the number of slides added so far.
func (d *Deck) SlideCount() int {
	return len(d.slides)
}

// Save drops the workbook's default empty sheet, creates the target
// directory, and writes the document to path.
func (d *Deck) Save(path string) error {
	if len(d.slides) > 0 {
		d.f.DeleteSheet("Sheet1")
		if idx, err := d.f.GetSheetIndex(d.slides[0]); err == nil {
			d.f.SetActiveSheet(idx)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := d.f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return d.f.Close()
}
