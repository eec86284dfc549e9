package selection

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"auto-copy/src/messages"
)

type fakeReader struct {
	text string
	err  error
}

func (f fakeReader) ReadSelection() (string, error) { return f.text, f.err }

type sent struct {
	from, to string
	msg      messages.Message
}

type fakeSender struct {
	sent []sent
	err  error
}

func (f *fakeSender) Send(from, to string, m messages.Message) error {
	f.sent = append(f.sent, sent{from, to, m})
	return f.err
}

func TestNonEmptySelectionSendsOneRequest(t *testing.T) {
	for _, text := range []string{"hello world", " ", "multi\nline", "ünïcødé"} {
		s := &fakeSender{}
		NewWatcher(fakeReader{text: text}, s, zerolog.Nop()).OnSelectionChange()

		if assert.Len(t, s.sent, 1, "text %q", text) {
			assert.Equal(t, messages.ProcessSelection, s.sent[0].from)
			assert.Equal(t, messages.ProcessClipboard, s.sent[0].to)
			assert.Equal(t, messages.CopyToClipboard{Text: text}, s.sent[0].msg)
		}
	}
}

func TestEmptySelectionSendsNothing(t *testing.T) {
	s := &fakeSender{}
	NewWatcher(fakeReader{text: ""}, s, zerolog.Nop()).OnSelectionChange()
	assert.Empty(t, s.sent)
}

func TestReadErrorSendsNothing(t *testing.T) {
	s := &fakeSender{}
	NewWatcher(fakeReader{err: errors.New("target STRING not available")}, s, zerolog.Nop()).OnSelectionChange()
	assert.Empty(t, s.sent)
}

func TestSendFailureIsSilent(t *testing.T) {
	s := &fakeSender{err: errors.New("process not registered")}
	w := NewWatcher(fakeReader{text: "x"}, s, zerolog.Nop())
	assert.NotPanics(t, w.OnSelectionChange)
	assert.Len(t, s.sent, 1)
}

func TestRapidSelectionsSentInOrder(t *testing.T) {
	s := &fakeSender{}
	r := &switchReader{}
	w := NewWatcher(r, s, zerolog.Nop())

	r.text = "foo"
	w.OnSelectionChange()
	r.text = "bar"
	w.OnSelectionChange()

	if assert.Len(t, s.sent, 2) {
		assert.Equal(t, messages.CopyToClipboard{Text: "foo"}, s.sent[0].msg)
		assert.Equal(t, messages.CopyToClipboard{Text: "bar"}, s.sent[1].msg)
	}
}

type switchReader struct{ text string }

func (r *switchReader) ReadSelection() (string, error) { return r.text, nil }
