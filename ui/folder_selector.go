package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/shoe7ess/FrostyToolsuite/ds"
)

const (
	cwdStateCorrect   = "correct"
	cwdStateIncorrect = "incorrect"
	cwdStateBlank     = ""

	// entriesPerPage is the chunk size ds.MakeChunks splits a directory
	// listing into; only the page the cursor currently sits in is rendered.
	entriesPerPage = 10
)

// FileSelector is a bubbletea model that lets an operator browse the
// filesystem looking for an `.ebx` file. Enter descends into a directory or,
// on an `.ebx` entry, selects it and quits; Backspace goes to the parent
// directory; q/Esc cancels.
type FileSelector struct {
	cwd      string
	cwdState string
	entries  []fileEntry
	cursor   int

	Selected string // set once Enter is pressed on an .ebx file
	Quit     bool
}

type fileEntry struct {
	name  string
	isDir bool
	isEbx bool
}

func CreateFileSelector() FileSelector {
	cwd, err := os.Getwd()
	if err != nil {
		err := errors.Wrap(err, "CreateFileSelector get current working directory error")
		panic(err)
	}
	s := FileSelector{cwd: cwd}
	s.reload()
	return s
}

func (s *FileSelector) reload() {
	entries, err := os.ReadDir(s.cwd)
	if err != nil {
		s.cwdState = cwdStateIncorrect
		s.entries = nil
		return
	}
	s.cwdState = cwdStateCorrect
	s.entries = lo.Map(entries, func(e os.DirEntry, _ int) fileEntry {
		name := e.Name()
		return fileEntry{
			name:  name,
			isDir: e.IsDir(),
			isEbx: !e.IsDir() && strings.EqualFold(filepath.Ext(name), ".ebx"),
		}
	})
	sort.Slice(s.entries, func(i, j int) bool {
		if s.entries[i].isDir != s.entries[j].isDir {
			return s.entries[i].isDir
		}
		return s.entries[i].name < s.entries[j].name
	})
	s.cursor = 0
}

func ReadDirectory(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	return lo.Map(entries, func(e os.DirEntry, _ int) string { return e.Name() })
}

func (s *FileSelector) currentPage() []fileEntry {
	if len(s.entries) == 0 {
		return nil
	}
	pages := ds.MakeChunks(s.entries, entriesPerPage)
	pageIdx := s.cursor / entriesPerPage
	if pageIdx >= len(pages) {
		return pages[len(pages)-1]
	}
	return pages[pageIdx]
}

func (s *FileSelector) View() string {
	var b strings.Builder
	b.WriteString("FROSTY EBX BROWSER\n\n")
	b.WriteString("Current directory: " + s.cwd + "\n")

	switch s.cwdState {
	case cwdStateIncorrect, cwdStateBlank:
		b.WriteString("Could not list this directory.\n")
	case cwdStateCorrect:
		b.WriteString("Use up/down to move, enter to open, backspace for parent, q to quit.\n")
	default:
		panic(ds.ErrUnreachableCode{Caller: "FileSelector.View"})
	}
	b.WriteString("\n")

	page := s.currentPage()
	base := (s.cursor / entriesPerPage) * entriesPerPage
	for i, e := range page {
		idx := base + i
		cursor := "  "
		if idx == s.cursor {
			cursor = "> "
		}
		label := e.name
		if e.isDir {
			label += "/"
		} else if e.isEbx {
			label += "  [ebx]"
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, label))
	}
	return b.String()
}

func (s *FileSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch keyMsg.String() {
	case "q", "esc", "ctrl+c":
		s.Quit = true
		return s, tea.Quit
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.entries)-1 {
			s.cursor++
		}
	case "backspace":
		s.cwd = filepath.Dir(s.cwd)
		s.reload()
	case "enter":
		if s.cursor >= len(s.entries) {
			return s, nil
		}
		e := s.entries[s.cursor]
		if e.isDir {
			s.cwd = filepath.Join(s.cwd, e.name)
			s.reload()
			return s, nil
		}
		if !e.isEbx {
			return s, nil
		}
		s.Selected = filepath.Join(s.cwd, e.name)
		return s, tea.Quit
	}
	return s, nil
}

func (s *FileSelector) Init() tea.Cmd {
	return nil
}
