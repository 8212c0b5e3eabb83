// ABOUTME: Terminal resource editor built on bubbletea around the shared editor core.
// ABOUTME: Form fields map to text inputs and areas; Ctrl+S goes through the keyboard registry.

package tui

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/editor"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/keys"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/schema"
)

// Config wires the terminal editor to a backend.
type Config struct {
	Client   editor.ResourceClient
	Schemas  backend.SchemaFetcher
	Language i18n.Language
	Logger   *zap.Logger
	Keys     *KeyMap
}

type (
	loadedMsg  struct{}
	savedMsg   struct{ err error }
	deletedMsg struct {
		outcome editor.Outcome
		err     error
	}
)

// navigator remembers the last route the editor asked for.
type navigator struct{ target string }

func (n *navigator) Navigate(path string) { n.target = path }

func (n *navigator) take() string {
	t := n.target
	n.target = ""
	return t
}

// confirmer answers with whatever the user typed at the prompt.
type confirmer struct{ answer bool }

func (c *confirmer) Confirm(string) bool { return c.answer }

type field struct {
	control   schema.Control
	multiline bool
	hidden    bool
	input     textinput.Model
	area      textarea.Model
}

func (f *field) value() string {
	if f.hidden {
		return f.control.Value
	}
	if f.multiline {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) focus() {
	if f.multiline {
		f.area.Focus()
		return
	}
	f.input.Focus()
}

func (f *field) blur() {
	if f.multiline {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

// Model is the bubbletea model of one editor session.
type Model struct {
	ctx    context.Context
	desc   editor.Descriptor
	lang   i18n.Language
	keymap KeyMap
	logger *zap.Logger

	ed      *editor.Editor
	bus     *keys.Bus
	relay   *notify.Relay
	nav     *navigator
	confirm *confirmer

	fields     []field
	focus      int
	confirming bool
	busy       bool
	done       bool
}

// New returns a model editing desc. The editor loads when the program starts.
func New(ctx context.Context, desc editor.Descriptor, cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Language == "" {
		cfg.Language = i18n.Korean
	}
	km := DefaultKeyMap
	if cfg.Keys != nil {
		km = *cfg.Keys
	}

	m := Model{
		ctx:     ctx,
		desc:    desc,
		lang:    cfg.Language,
		keymap:  km,
		logger:  cfg.Logger.Named("tui"),
		bus:     keys.NewBus(),
		relay:   notify.NewRelay(notify.WithLanguage(cfg.Language), notify.WithLogger(cfg.Logger)),
		nav:     &navigator{},
		confirm: &confirmer{},
	}
	m.ed = editor.New(desc, editor.Deps{
		Client:    cfg.Client,
		Schemas:   cfg.Schemas,
		Notifier:  m.relay,
		Navigator: m.nav,
		Confirmer: m.confirm,
		Keys:      m.bus,
		Logger:    cfg.Logger,
	}, editor.Options{Language: cfg.Language})
	return m
}

// Run starts an interactive program for desc and blocks until the user quits.
func Run(ctx context.Context, desc editor.Descriptor, cfg Config) error {
	m := New(ctx, desc, cfg)
	defer m.ed.Stop()
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	ed, ctx := m.ed, m.ctx
	return func() tea.Msg {
		ed.Start(ctx)
		return loadedMsg{}
	}
}

// Descriptor returns the instance currently being edited.
func (m Model) Descriptor() editor.Descriptor { return m.desc }

// Focused returns the name of the field that receives typed keys.
func (m Model) Focused() string {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return ""
	}
	return m.fields[m.focus].control.Name
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.busy = false
		m.rebuild()
		return m, nil

	case savedMsg:
		m.busy = false
		if target := m.nav.take(); target != "" {
			return m.follow(target)
		}
		if msg.err == nil {
			m.rebuild()
		}
		return m, nil

	case deletedMsg:
		m.busy = false
		m.confirm.answer = false
		if msg.err != nil {
			m.logger.Debug("Delete refused", zap.Error(msg.err))
			return m, nil
		}
		if target := m.nav.take(); target != "" {
			return m.follow(target)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.answer(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.done = true
		return m, tea.Quit
	case m.busy:
		return m, nil
	case key.Matches(msg, m.keymap.Save):
		return m.save()
	case key.Matches(msg, m.keymap.Delete):
		if !m.desc.CreateMode() {
			m.confirming = true
		}
		return m, nil
	case key.Matches(msg, m.keymap.New):
		if err := m.ed.CreateNew(); err != nil {
			m.relay.Notify(notify.Warning, i18n.T(m.lang, i18n.MsgBusy))
			return m, nil
		}
		return m.follow(m.nav.take())
	case key.Matches(msg, m.keymap.Next):
		m.move(1)
		return m, nil
	case key.Matches(msg, m.keymap.Prev):
		m.move(-1)
		return m, nil
	}

	if m.Focused() == "" {
		return m, nil
	}
	f := &m.fields[m.focus]
	var cmd tea.Cmd
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return m, cmd
}

func (m Model) answer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Yes):
		m.confirming = false
		m.busy = true
		m.confirm.answer = true
		ed, ctx := m.ed, m.ctx
		return m, func() tea.Msg {
			outcome, err := ed.Delete(ctx)
			return deletedMsg{outcome: outcome, err: err}
		}
	case key.Matches(msg, m.keymap.No):
		m.confirming = false
	}
	return m, nil
}

// save applies the typed values and fires the save chord at the editor.
func (m Model) save() (tea.Model, tea.Cmd) {
	inputs := m.inputs()
	m.busy = true
	ed, bus := m.ed, m.bus
	return m, func() tea.Msg {
		if err := ed.ApplyForm(inputs); err != nil {
			return savedMsg{err: err}
		}
		bus.Dispatch(&keys.Event{Key: "s", Ctrl: true})
		return savedMsg{}
	}
}

// follow moves the session to the route the editor navigated to. Leaving
// for the collection ends the program.
func (m Model) follow(target string) (tea.Model, tea.Cmd) {
	switch target {
	case "":
		return m, nil
	case m.desc.CollectionPath():
		m.done = true
		return m, tea.Quit
	case m.desc.CreatePath():
		m.desc.ID = ""
	default:
		id, err := url.PathUnescape(strings.TrimPrefix(target, m.desc.CollectionPath()+"/"))
		if err != nil || !strings.HasPrefix(target, m.desc.CollectionPath()+"/") {
			m.logger.Warn("Ignoring navigation outside the resource", zap.String("target", target))
			return m, nil
		}
		m.desc.ID = id
	}

	m.busy = true
	ed, ctx, desc := m.ed, m.ctx, m.desc
	return m, func() tea.Msg {
		ed.Reset(ctx, desc)
		return loadedMsg{}
	}
}

func (m *Model) move(step int) {
	if len(m.fields) == 0 {
		return
	}
	m.fields[m.focus].blur()
	for i := 0; i < len(m.fields); i++ {
		m.focus = (m.focus + step + len(m.fields)) % len(m.fields)
		if !m.fields[m.focus].hidden {
			break
		}
	}
	m.fields[m.focus].focus()
}

// rebuild recreates the inputs from the editor's current draft. File
// fields are left out and keep their stored value.
func (m *Model) rebuild() {
	view := m.ed.View()
	m.fields = m.fields[:0:0]
	m.focus = -1
	for _, c := range view.Controls {
		if c.Kind == schema.KindFile {
			continue
		}
		f := field{control: c}
		switch c.Kind {
		case schema.KindHidden:
			f.hidden = true
		case schema.KindTextarea, schema.KindMarkdown, schema.KindList, schema.KindJSON:
			f.multiline = true
			f.area = textarea.New()
			f.area.ShowLineNumbers = false
			f.area.SetHeight(4)
			f.area.SetValue(c.Value)
		default:
			f.input = textinput.New()
			f.input.Prompt = ""
			value := c.Value
			if c.Kind == schema.KindCheckbox {
				value = strconv.FormatBool(c.Checked)
				f.input.Placeholder = "true / false"
			}
			if c.Kind == schema.KindEnum {
				opts := make([]string, 0, len(c.Options))
				for _, o := range c.Options {
					opts = append(opts, o.Value)
				}
				f.input.Placeholder = strings.Join(opts, " | ")
			}
			f.input.SetValue(value)
		}
		if !f.hidden && m.focus < 0 {
			m.focus = len(m.fields)
			f.focus()
		}
		m.fields = append(m.fields, f)
	}
	if m.focus < 0 {
		m.focus = 0
	}
}

func (m Model) inputs() map[string]schema.Input {
	out := make(map[string]schema.Input, len(m.fields))
	for i := range m.fields {
		f := &m.fields[i]
		out[f.control.Name] = schema.Input{Values: []string{f.value()}}
	}
	return out
}

func (m Model) View() string {
	if m.done {
		return m.notifications()
	}

	view := m.ed.View()
	var b strings.Builder

	b.WriteString(titleStyle.Render(view.Title))
	b.WriteString("\n")

	switch {
	case view.Spinner:
		b.WriteString(readOnlyStyle.Render("...") + "\n")
	case view.Failed:
		b.WriteString(errorStyle.Render(i18n.T(m.lang, i18n.MsgUnknownError)) + "\n")
	}

	for _, row := range view.ReadOnly {
		value := row.Value
		if row.Link != "" {
			value = row.LinkLabel
		}
		b.WriteString(readOnlyStyle.Render(row.Name+": "+value) + "\n")
	}
	if len(view.ReadOnly) > 0 {
		b.WriteString("\n")
	}

	for i := range m.fields {
		f := &m.fields[i]
		if f.hidden {
			continue
		}
		label := f.control.Label
		if f.control.Required {
			label += " *"
		}
		if i == m.focus {
			b.WriteString(focusedLabel.Render(label))
		} else {
			b.WriteString(labelStyle.Render(label))
		}
		b.WriteString("\n")
		if f.multiline {
			b.WriteString(f.area.View())
		} else {
			b.WriteString(f.input.View())
		}
		b.WriteString("\n")
		if msg, ok := view.Errors[f.control.Name]; ok {
			b.WriteString(errorStyle.Render(msg) + "\n")
		}
	}
	if msg, ok := view.Errors[""]; ok {
		b.WriteString(errorStyle.Render(msg) + "\n")
	}

	b.WriteString(m.notifications())

	if m.confirming {
		b.WriteString(promptStyle.Render(i18n.T(m.lang, i18n.MsgConfirmDelete)+" [y/N]") + "\n")
	}

	help := make([]string, 0, len(m.keymap.help()))
	for _, kb := range m.keymap.help() {
		h := kb.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}

func (m Model) notifications() string {
	var b strings.Builder
	for _, n := range m.relay.Active() {
		line := n.Message
		if n.Detail != "" {
			line += " " + n.Detail
		}
		b.WriteString(severityStyles[n.Severity].Render(line) + "\n")
	}
	return b.String()
}
