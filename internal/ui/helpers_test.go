package ui

import (
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"workbench/internal/dock"
	"workbench/internal/trace"
)

func containsPlain(s, sub string) bool {
	return strings.Contains(ansi.Strip(s), sub)
}

// testApp is an app on a 100x31 terminal: a 100x30 layout above the status
// bar.
type testApp struct {
	*AppModel
	model   tea.Model
	bridge  *TeaBridge
	screens *ScreenHost
}

func newTestApp(t *testing.T, configure ...func(*Options)) *testApp {
	t.Helper()
	keys := NewKeybindRegistry()
	b := NewTeaBridge()
	b.Register(ComponentText, NewTextContent)
	b.Register(ComponentInspector, NewInspectorContent)
	b.Register(ComponentTrace, NewTraceFactory(trace.NewRecorder(10)))
	b.Register(ComponentWelcome, NewWelcomeFactory(keys))
	screens := NewScreenHost()
	e := dock.New(dock.Options{
		Bridge:            b,
		WindowHost:        screens,
		Liveness:          screens.Live,
		PopoutClosePolicy: dock.Redock,
	})
	t.Cleanup(e.Dispose)

	opts := Options{Engine: e, Bridge: b, Screens: screens, Keys: keys, Workspace: "test"}
	for _, fn := range configure {
		fn(&opts)
	}
	a := NewAppModel(opts)
	ta := &testApp{AppModel: a, model: a.AsTeaModel(), bridge: b, screens: screens}
	ta.send(tea.WindowSizeMsg{Width: 100, Height: 31})
	return ta
}

// send delivers msgs and runs the resulting commands until they settle.
func (ta *testApp) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		_, cmd := ta.model.Update(msg)
		ta.drain(cmd, 0)
	}
}

// leader types SPC followed by the space separated keys.
func (ta *testApp) leader(keys string) {
	ta.send(keyMsg(" "))
	for _, k := range strings.Fields(keys) {
		ta.send(keyMsg(k))
	}
}

func (ta *testApp) typeText(s string) {
	for _, r := range s {
		ta.send(keyMsg(string(r)))
	}
}

var cmdType = reflect.TypeOf(tea.Cmd(nil))

// cmdsOf unpacks the commands of a batch or sequence message, or returns nil.
func cmdsOf(msg tea.Msg) []tea.Cmd {
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Slice || v.Type().Elem() != cmdType {
		return nil
	}
	cmds := make([]tea.Cmd, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		c, _ := v.Index(i).Interface().(tea.Cmd)
		cmds = append(cmds, c)
	}
	return cmds
}

func (ta *testApp) drain(cmd tea.Cmd, depth int) {
	if cmd == nil || depth > 8 {
		return
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(50 * time.Millisecond):
		// Timers such as the cursor blink.
		return
	}
	if msg == nil {
		return
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}
	if cmds := cmdsOf(msg); cmds != nil {
		for _, c := range cmds {
			ta.drain(c, depth+1)
		}
		return
	}
	_, next := ta.model.Update(msg)
	ta.drain(next, depth+1)
}

func (ta *testApp) drag(fromX, fromY, toX, toY int) {
	ta.send(
		tea.MouseMsg{X: fromX, Y: fromY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: (fromX + toX) / 2, Y: (fromY + toY) / 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: toX, Y: toY, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: toX, Y: toY, Action: tea.MouseActionRelease},
	)
}

func (ta *testApp) click(x, y int) {
	ta.send(
		tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease},
	)
}

func (ta *testApp) panelIDs() []string {
	var ids []string
	for _, p := range ta.engine.Panels() {
		ids = append(ids, p.ID())
	}
	return ids
}
