package tui

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// formModel is an editable Start/Switch form using bubbles/textinput. It can
// be used as a submodel by the dashboard. On submit it issues a tea.Cmd that
// calls the provided EventWriter with the Start or Switch parameters and
// returns a startDoneMsg (consistent with dashboard handling).
type formModel struct {
	tagsInput *textinput.Model
	noteInput *textinput.Model

	inputs []*textinput.Model

	focused int
	width   int

	mode string // "start" or "switch": picks writer.Start or writer.Switch on submit; both produce startDoneMsg

	suggestions []suggestion

	writer EventWriter

	tagCandidates []string
	matchList     list.Model
	listOpen      bool

	debounceID int
}

// NewStartSwitchForm constructs a form model wired to the provided writer.
// last is used to seed the initial tag value when available. suggestions are
// offered as a preview of recent tag combinations.
func NewStartSwitchForm(j JournalService, w EventWriter, last *Entry, suggestions []suggestion) *formModel {
	tags := textinput.NewModel()
	tags.Placeholder = "comma-separated tags (e.g. acme,design)"
	tags.CharLimit = 128
	tags.Width = 30

	note := textinput.NewModel()
	note.Placeholder = "note (optional)"
	note.CharLimit = 256
	note.Width = 40

	if last != nil && len(last.Tags) > 0 {
		tags.SetValue(strings.Join(last.Tags, ","))
	}

	inputs := []*textinput.Model{&tags, &note}
	inputs[0].Focus()

	fm := &formModel{
		tagsInput:   &tags,
		noteInput:   &note,
		inputs:      inputs,
		focused:     0,
		width:       80,
		mode:        "start",
		suggestions: suggestions,
		writer:      w,
	}

	fm.loadCandidates(j)

	if len(fm.tagCandidates) == 0 {
		set := map[string]struct{}{}
		for _, s := range suggestions {
			for _, t := range s.Tags {
				set[t] = struct{}{}
			}
		}
		if last != nil {
			for _, t := range last.Tags {
				set[t] = struct{}{}
			}
		}
		if len(set) > 0 {
			out := make([]string, 0, len(set))
			for k := range set {
				out = append(out, k)
			}
			sort.Strings(out)
			fm.tagCandidates = out
		}
	}

	items := itemsFromStrings([]string{})
	fm.matchList = list.New(items, list.NewDefaultDelegate(), max(20, fm.width/3), 6)
	fm.matchList.SetShowStatusBar(false)
	fm.matchList.SetFilteringEnabled(false)
	fm.matchList.SetShowHelp(false)

	return fm
}

// Init implements tea.Model.Init
func (f *formModel) Init() tea.Cmd {
	return textinput.Blink
}

// suggestMsg is emitted when a debounced suggestion computation completes.
type suggestMsg struct {
	id   int
	term string
}

// Update processes messages. It scopes typing to the focused input and
// allows Tab/Shift-Tab to move focus. Enter on the last input submits the form.
func (f *formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		for _, ti := range f.inputs {
			ti.Width = max(10, f.width/3)
		}
		h := 6
		if l := len(f.matchList.Items()); l > 0 && l < h {
			h = l
		}
		f.matchList.SetSize(max(20, f.width/3), h)
		return f, nil

	case suggestMsg:
		if msg.id != f.debounceID {
			return f, nil
		}
		term := lastCommaToken(msg.term)
		matches := candidateMatches(f.tagCandidates, term)
		if len(matches) > 0 {
			f.matchList.SetItems(itemsFromStrings(matches))
			h := min(10, len(matches))
			f.matchList.SetSize(max(20, f.width/3), max(3, h))
			f.listOpen = true
		} else {
			f.listOpen = false
		}
		return f, nil

	case tea.KeyMsg:
		if f.listOpen {
			switch msg.String() {
			case "enter":
				if it := f.matchList.SelectedItem(); it != nil {
					if li, ok := it.(listItem); ok {
						f.tagsInput.SetValue(replaceLastCommaToken(f.tagsInput.Value(), li.Title()))
					}
				}
				f.listOpen = false
				return f, nil
			case "esc":
				f.listOpen = false
				return f, nil
			default:
				var cmd tea.Cmd
				f.matchList, cmd = f.matchList.Update(msg)
				return f, cmd
			}
		}

		switch msg.String() {
		case "tab", "shift+tab", "enter", "up", "down", "ctrl+space":
			s := msg.String()

			if s == "ctrl+space" && f.focused == 0 {
				term := lastCommaToken(f.tagsInput.Value())
				matches := candidateMatches(f.tagCandidates, term)
				if len(matches) > 0 {
					f.matchList.SetItems(itemsFromStrings(matches))
					h := min(10, len(matches))
					f.matchList.SetSize(max(20, f.width/3), max(3, h))
					f.listOpen = true
				}
				return f, nil
			}

			if s == "enter" && f.focused == len(f.inputs)-1 {
				return f, f.submitCmd()
			}

			if s == "tab" || s == "down" {
				f.focusNext()
				return f, nil
			}
			if s == "shift+tab" || s == "up" {
				f.focusPrev()
				return f, nil
			}
			return f, nil

		case "esc":
			return f, func() tea.Msg { return formCancelledMsg{} }

		case "ctrl+c":
			return f, tea.Quit
		}

		if f.focused >= 0 && f.focused < len(f.inputs) {
			ti := f.inputs[f.focused]
			var cmd tea.Cmd
			*ti, cmd = ti.Update(msg)

			if f.focused == 0 {
				f.debounceID++
				id := f.debounceID
				term := ti.Value()
				debounceCmd := func() tea.Msg {
					time.Sleep(120 * time.Millisecond)
					return suggestMsg{id: id, term: term}
				}
				return f, tea.Batch(cmd, debounceCmd)
			}

			return f, cmd
		}
		return f, nil

	default:
		if f.focused >= 0 && f.focused < len(f.inputs) {
			ti := f.inputs[f.focused]
			var cmd tea.Cmd
			*ti, cmd = ti.Update(msg)
			return f, cmd
		}
		return f, nil
	}
}

// View renders the form with labels and current input Views, wrapped in a section box.
func (f *formModel) View() string {
	title := "Start / Switch (editable)"
	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render(title))
	b.WriteString("\n\n")

	renderLine := func(label string, ti *textinput.Model) {
		labelR := EmphStyle.Render(label)
		b.WriteString(labelR + "  " + ti.View() + "\n")
	}

	renderLine("Tags", f.tagsInput)
	if f.listOpen && f.focused == 0 {
		b.WriteString("\n")
		listView := f.matchList.View()
		if listView == "" {
			b.WriteString(MutedStyle.Render("(no suggestions)\n"))
		} else {
			b.WriteString(listView)
			b.WriteString("\n")
		}
	}
	renderLine("Note", f.noteInput)

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("Tab: next field • Shift+Tab: prev • Enter on Note: submit • Esc: cancel • Ctrl+Space: complete tag"))

	return SectionBoxStyle.Width(f.width).Render(b.String())
}

func (f *formModel) focusNext() {
	if f.focused < 0 {
		f.focused = 0
	}
	if f.focused < len(f.inputs) {
		f.inputs[f.focused].Blur()
	}
	f.focused = (f.focused + 1) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

func (f *formModel) focusPrev() {
	if f.focused < 0 {
		f.focused = 0
	}
	if f.focused < len(f.inputs) {
		f.inputs[f.focused].Blur()
	}
	f.focused = (f.focused - 1 + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

// submitCmd constructs the StartParams/SwitchParams from the form and
// returns a tea.Cmd that calls the writer and returns startDoneMsg.
func (f *formModel) submitCmd() tea.Cmd {
	tagsRaw := strings.TrimSpace(f.tagsInput.Value())
	note := strings.TrimSpace(f.noteInput.Value())

	var tags []string
	if tagsRaw != "" {
		for _, t := range strings.Split(tagsRaw, ",") {
			if s := strings.TrimSpace(t); s != "" {
				tags = append(tags, s)
			}
		}
	}

	return func() tea.Msg {
		if f.writer == nil {
			return startDoneMsg{}
		}
		if f.mode == "switch" {
			sp := SwitchParams{Tags: tags, Note: note}
			if err := f.writer.Switch(context.Background(), sp); err != nil {
				return startDoneMsg{err: err}
			}
			return startDoneMsg{}
		}
		p := StartParams{Tags: tags, Note: note}
		if err := f.writer.Start(context.Background(), p); err != nil {
			return startDoneMsg{err: err}
		}
		return startDoneMsg{}
	}
}

// loadCandidates fetches the vocabulary of tags ever recorded, best-effort.
func (f *formModel) loadCandidates(j JournalService) {
	if j == nil {
		return
	}
	tags, err := j.KnownTags(context.Background())
	if err != nil {
		return
	}
	sort.Strings(tags)
	f.tagCandidates = tags
}

// lastCommaToken returns the in-progress tag being typed: the text after the
// final comma in a comma-separated list.
func lastCommaToken(s string) string {
	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[idx+1:])
}

// replaceLastCommaToken swaps the in-progress tag token for a chosen candidate.
func replaceLastCommaToken(s, chosen string) string {
	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return chosen + ","
	}
	return s[:idx+1] + chosen + ","
}

func candidateMatches(list []string, term string) []string {
	if term == "" {
		if len(list) > 20 {
			return list[:20]
		}
		return list
	}
	lower := strings.ToLower(term)
	var prefix []string
	for _, it := range list {
		if strings.HasPrefix(strings.ToLower(it), lower) {
			prefix = append(prefix, it)
		}
	}
	if len(prefix) > 0 {
		return prefix
	}
	matches := fuzzy.Find(term, list)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	if len(out) > 20 {
		return out[:20]
	}
	return out
}

// listItem wraps a string as a list.Item for bubbles/list
type listItem struct {
	s string
}

func (l listItem) Title() string       { return l.s }
func (l listItem) Description() string { return "" }
func (l listItem) FilterValue() string { return l.s }

func itemsFromStrings(in []string) []list.Item {
	out := make([]list.Item, 0, len(in))
	for _, s := range in {
		out = append(out, listItem{s: s})
	}
	return out
}

type formCancelledMsg struct{}

// Methods to let callers configure the form submodel.
func (f *formModel) SetMode(m string)        { f.mode = m }
func (f *formModel) SetWriter(w EventWriter) { f.writer = w }
