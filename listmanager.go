package main

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ListManager is the queue of captcha image paths shared by all tasks. Each
// distinct path is handed out once.
type ListManager struct {
	mu    sync.Mutex
	index int
	items []*ListItem
	seen  map[string]struct{}
}

type ListItem struct {
	hash string
	line string
}

func (li *ListItem) Line() string {
	return li.line
}

func NewListManager() *ListManager {
	lm := new(ListManager)
	lm.seen = make(map[string]struct{})
	return lm
}

// Read adds every non-empty line of filename. Lines starting with # are
// skipped.
func (lm *ListManager) Read(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "open captcha list")
	}
	defer file.Close()

	fileScanner := bufio.NewScanner(file)
	fileScanner.Split(bufio.ScanLines)

	for fileScanner.Scan() {
		line := strings.TrimSpace(fileScanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lm.AddLine(line)
	}

	return errors.Wrap(fileScanner.Err(), "read captcha list")
}

func (lm *ListManager) Count() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.items)
}

// AddLine queues line unless it was queued before, and returns nil in that case.
func (lm *ListManager) AddLine(line string) *ListItem {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	hash := fmt.Sprintf("%x", md5.Sum([]byte(line)))
	if _, ok := lm.seen[hash]; ok {
		return nil
	}
	lm.seen[hash] = struct{}{}

	li := &ListItem{hash: hash, line: line}
	lm.items = append(lm.items, li)

	return li
}

func (lm *ListManager) AddLines(lines ...string) {
	for _, line := range lines {
		lm.AddLine(line)
	}
}

// Next hands out the next queued item; ok is false once the queue is drained.
func (lm *ListManager) Next() (item *ListItem, ok bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.index >= len(lm.items) {
		return nil, false
	}

	item = lm.items[lm.index]
	lm.index++

	return item, true
}
