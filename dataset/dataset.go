// Package dataset turns a directory of labelled WAV files into classifier
// training data.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RyanBlaney/sonido-svm/classifier"
	"github.com/RyanBlaney/sonido-svm/features"
	"github.com/RyanBlaney/sonido-svm/svmlight"
)

// MusicPrefix marks music files by name
const MusicPrefix = "mu"

// DefaultTrainingFile is the output name used when none is given
const DefaultTrainingFile = "TrainingData"

// Entry is one audio file found in a directory
type Entry struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

// Path joins Dir and Name
func (e Entry) Path() string {
	return filepath.Join(e.Dir, e.Name)
}

// Class is the class implied by the file name
func (e Entry) Class() classifier.Class {
	return LabelForName(e.Name)
}

// Record pairs an entry with its extracted features
type Record struct {
	Entry    Entry
	Class    classifier.Class
	Features features.FeatureVector
}

// Example converts the record to a feature-file line with the file name as
// comment
func (r Record) Example() svmlight.Example {
	return r.Features.Example(r.Class.Label(), r.Entry.Name)
}

// LabelForName returns Music for names starting with "mu", Speech otherwise
func LabelForName(name string) classifier.Class {
	if strings.HasPrefix(name, MusicPrefix) {
		return classifier.Music
	}
	return classifier.Speech
}

// Scan lists the .wav files in dir sorted by name. Subdirectories are not
// descended into.
func Scan(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(de.Name()), ".wav") {
			continue
		}
		entries = append(entries, Entry{Dir: dir, Name: de.Name()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
