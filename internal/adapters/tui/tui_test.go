package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/pomodore/internal/config"
	"github.com/xvierd/pomodore/internal/domain"
)

type fakeCommander struct {
	state      domain.PomodoroState
	dispatched []domain.CommandRequest
	marked     int
}

func (f *fakeCommander) Snapshot(context.Context) (domain.PomodoroState, error) {
	return f.state, nil
}

func (f *fakeCommander) Dispatch(_ context.Context, req domain.CommandRequest) (domain.PomodoroState, error) {
	f.dispatched = append(f.dispatched, req)
	next, err := req.Apply(f.state)
	if err != nil {
		return f.state, err
	}
	f.state = next
	return next, nil
}

func (f *fakeCommander) UpdateSettings(_ context.Context, s domain.Settings) (domain.PomodoroState, error) {
	f.state = f.state.WithSettings(s)
	return f.state, nil
}

func (f *fakeCommander) MarkCelebrationShown(context.Context) (domain.PomodoroState, error) {
	f.marked++
	f.state = f.state.MarkCelebrationShown()
	return f.state, nil
}

func (f *fakeCommander) Watch(context.Context) (<-chan domain.PomodoroState, error) {
	return nil, nil
}

func newTestModel(state domain.PomodoroState) (Model, *fakeCommander) {
	fc := &fakeCommander{state: state}
	m := NewModel(context.Background(), fc, nil, state, nil)
	m.width = 80
	m.height = 24
	return m, fc
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command, feeding its message back.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(Model)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			if _, quit := msg.(tea.QuitMsg); !quit {
				next, _ = m.Update(msg)
				m = next.(Model)
			}
		}
	}
	return m
}

func idleState() domain.PomodoroState {
	return domain.NewPomodoroState(domain.DefaultSettings())
}

func TestModel_StartKeys(t *testing.T) {
	tests := []struct {
		key  string
		want domain.TimerMode
	}{
		{"s", domain.ModeWork},
		{"1", domain.ModeWork},
		{"2", domain.ModeShortBreak},
		{"3", domain.ModeLongBreak},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, fc := newTestModel(idleState())
			m = press(t, m, tt.key)

			if len(fc.dispatched) != 1 || fc.dispatched[0].Mode != tt.want {
				t.Fatalf("dispatched = %v, want START %s", fc.dispatched, tt.want)
			}
			if got := domain.DisplayMode(m.State().Timer); got != tt.want {
				t.Errorf("mode = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestModel_PauseKeyToggles(t *testing.T) {
	m, fc := newTestModel(idleState().Start(domain.ModeWork))

	m = press(t, m, "p")
	if m.State().Timer.Kind() != domain.KindPaused {
		t.Fatalf("state = %s, want paused", m.State().Timer.Kind())
	}

	m = press(t, m, " ")
	if m.State().Timer.Kind() != domain.KindRunning {
		t.Errorf("state = %s, want running", m.State().Timer.Kind())
	}
	if len(fc.dispatched) != 2 || fc.dispatched[1].Command != domain.CmdResume {
		t.Errorf("dispatched = %v", fc.dispatched)
	}
}

func TestModel_KeysIgnoredWhenNotAllowed(t *testing.T) {
	m, fc := newTestModel(idleState())
	for _, k := range []string{"p", "r", "x", "k"} {
		m = press(t, m, k)
	}
	if len(fc.dispatched) != 0 {
		t.Errorf("idle timer dispatched %v", fc.dispatched)
	}

	m, fc = newTestModel(idleState().Start(domain.ModeWork))
	m = press(t, m, "s")
	m = press(t, m, "e")
	if len(fc.dispatched) != 0 {
		t.Errorf("running timer dispatched %v", fc.dispatched)
	}
	if m.WantsSettings {
		t.Error("settings should not open while a timer runs")
	}
}

func TestModel_SkipAndStop(t *testing.T) {
	m, _ := newTestModel(idleState().Start(domain.ModeWork))

	m = press(t, m, "k")
	if got := domain.DisplayMode(m.State().Timer); got != domain.ModeShortBreak {
		t.Fatalf("after skip mode = %s, want short_break", got)
	}

	m = press(t, m, "x")
	if m.State().Timer.Kind() != domain.KindIdle {
		t.Errorf("after stop state = %s, want idle", m.State().Timer.Kind())
	}
	if m.State().CompletedSessions != 0 {
		t.Errorf("stop should reset the cycle, completed = %d", m.State().CompletedSessions)
	}
}

func TestModel_EditSettingsKey(t *testing.T) {
	m, _ := newTestModel(idleState())

	next, cmd := m.Update(key("e"))
	m = next.(Model)
	if !m.WantsSettings {
		t.Error("WantsSettings should be set")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_StateMsgReplacesState(t *testing.T) {
	m, _ := newTestModel(idleState())
	running := idleState().Start(domain.ModeLongBreak)

	next, _ := m.Update(stateMsg(running))
	m = next.(Model)

	if m.State().Timer != running.Timer {
		t.Errorf("timer = %v, want %v", m.State().Timer, running.Timer)
	}
	if m.getThemeColor() != "#9B59B6" {
		t.Errorf("theme color = %s, want long break color", m.getThemeColor())
	}
}

func celebratingState() domain.PomodoroState {
	s := domain.DefaultSettings()
	s.TotalCycles = 1
	state := domain.NewPomodoroState(s).Start(domain.ModeWork)
	return state.Skip()
}

func TestModel_CelebrationCountsDownThenMarksShown(t *testing.T) {
	state := celebratingState()
	if !state.CelebrationDue() {
		t.Fatal("fixture should be due a celebration")
	}

	fc := &fakeCommander{state: state}
	m := NewModel(context.Background(), fc, nil, state, nil)
	m.width, m.height = 80, 24

	if !strings.Contains(m.View(), "Cycle complete") {
		t.Error("banner should be visible")
	}

	var cmd tea.Cmd
	for i := 0; i < CelebrationTicks; i++ {
		var next tea.Model
		next, cmd = m.Update(tickMsg(time.Now()))
		m = next.(Model)
	}
	if cmd == nil {
		t.Fatal("last tick should report the banner to the session")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if fc.marked != 1 {
		t.Errorf("MarkCelebrationShown called %d times, want 1", fc.marked)
	}
	if fc.state.CelebrationDue() {
		t.Error("session should record the celebration as shown")
	}
	if m.State().CelebrationDue() {
		t.Error("celebration should be marked shown")
	}
	if strings.Contains(m.View(), "Cycle complete") {
		t.Error("banner should be gone")
	}

	// A pushed state that still says due does not restart the banner.
	next, _ = m.Update(stateMsg(state))
	m = next.(Model)
	if m.celebrationTicks != 0 {
		t.Errorf("celebrationTicks = %d, want 0", m.celebrationTicks)
	}

	// Re-attaching to the same session shows no banner.
	again := NewModel(context.Background(), fc, nil, fc.state, nil)
	if again.celebrationTicks != 0 {
		t.Errorf("re-attached celebrationTicks = %d, want 0", again.celebrationTicks)
	}
	if again.Init() != nil {
		t.Error("re-attached model should not start the banner countdown")
	}
}

func TestModel_ClosedStreamQuits(t *testing.T) {
	m, _ := newTestModel(idleState())
	_, cmd := m.Update(closedMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_View(t *testing.T) {
	tests := []struct {
		name  string
		state domain.PomodoroState
		want  []string
	}{
		{"idle", idleState(), []string{"Work (Ready)", "[s]tart"}},
		{"running", idleState().Start(domain.ModeShortBreak), []string{"Short Break (Running)", "[p]ause"}},
		{"paused", idleState().Start(domain.ModeWork).Pause(), []string{"PAUSED", "[r]esume"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(tt.state)
			view := m.View()
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("View() missing %q", w)
				}
			}
		})
	}
}

func TestModel_ViewKeepAwake(t *testing.T) {
	s := domain.DefaultSettings()
	s.KeepScreenOn = true
	m, _ := newTestModel(domain.NewPomodoroState(s).Start(domain.ModeWork))

	if !strings.Contains(m.View(), "keeping screen on") {
		t.Error("View() should show the keep-awake indicator")
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := NewModel(context.Background(), &fakeCommander{}, nil, idleState(), nil)
	if m.View() != "Loading..." {
		t.Error("View() should show loading before the first resize")
	}
}

func TestBigClock(t *testing.T) {
	rows := bigClock("10:05")
	if rows[0] != " █  ████   ████ ████" {
		t.Errorf("row 0 = %q", rows[0])
	}
	for i, row := range rows {
		if len([]rune(row)) != len([]rune(rows[0])) {
			t.Errorf("row %d has width %d, want %d", i, len([]rune(row)), len([]rune(rows[0])))
		}
	}

	narrow := renderBigTime("10:05", "#FFFFFF", 20)
	if strings.Contains(narrow, "\n") {
		t.Error("narrow terminals should get a single line")
	}
}

func TestResolveTheme(t *testing.T) {
	theme := resolveTheme(&config.ThemeConfig{ColorWork: "#000000"})
	if theme.ColorWork != "#000000" {
		t.Errorf("ColorWork = %s, want override", theme.ColorWork)
	}
	if theme.ColorShortBreak != config.DefaultThemeConfig().ColorShortBreak {
		t.Error("empty fields should fall back to defaults")
	}
}

func TestModeItems(t *testing.T) {
	items := ModeItems(domain.DefaultSettings())
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Desc != "25 min" || items[2].Desc != "15 min" {
		t.Errorf("items = %v", items)
	}
}

func TestSettingsFields_RoundTrip(t *testing.T) {
	s := domain.DefaultSettings()
	s.LongBreakDurationMinutes = 20
	s.KeepScreenOn = true

	if got := newSettingsFields(s).settings(); got != s {
		t.Errorf("settings() = %+v, want %+v", got, s)
	}

	if validatePositiveInt("0") == nil {
		t.Error("0 is not a positive integer")
	}
	if validateNonNegativeInt("0") != nil {
		t.Error("0 is a valid duration")
	}
}
