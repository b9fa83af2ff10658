// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package openings loads a fixed-size pool of starting FENs that the
// Schedule Generator's opening_id indexes into.
package openings

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
)

// Book is an ordered, indexable pool of starting positions. A Book's size
// is fixed at load time; it is the caller's responsibility to configure a
// tournament's num_openings to match len(Book.Entries).
type Book struct {
	Entries []string
}

// Load reads one FEN per non-blank, non-comment ('#') line from path and
// validates each as a legal Ataxx position.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("openings: %w", err)
	}
	defer f.Close()

	var book Book
	scanner := bufio.NewScanner(f)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := board.NewPosition(line); err != nil {
			return nil, fmt.Errorf("openings: %s:%d: %w", path, lineno, err)
		}
		book.Entries = append(book.Entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("openings: %w", err)
	}
	if len(book.Entries) == 0 {
		return nil, fmt.Errorf("openings: %s: no openings found", path)
	}
	return &book, nil
}

// Default returns a single-entry Book holding the standard Ataxx starting
// position, used when a tournament is configured without an openings file.
func Default() *Book {
	return &Book{Entries: []string{board.StartFEN}}
}

// At returns the FEN at the given opening index, wrapping if the index
// exceeds the book's size.
func (b *Book) At(i int) string {
	return b.Entries[i%len(b.Entries)]
}

// Len returns the number of openings in the book.
func (b *Book) Len() int { return len(b.Entries) }
