package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudyDriver(t *testing.T, app *App) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newStudyModel(app), teatest.WithSize(100, 30))
	d.DrainInit()
	return d
}

func studyState(d *teatest.Driver) studyModel {
	return d.Model.(studyModel)
}

func TestStudyModel_ShowsQuestionThenAnswer(t *testing.T) {
	app := testApp(t)
	seedNotes(t, app, "Default", "uno")
	d := newStudyDriver(t, app)

	view := d.View()
	assert.Contains(t, view, "uno")
	assert.NotContains(t, view, "back of uno")
	assert.Contains(t, view, "show answer")

	d.PressSpace()

	view = d.View()
	assert.True(t, studyState(d).answered)
	assert.Contains(t, view, "back of uno")
	assert.Contains(t, view, "Again")
	assert.Contains(t, view, "Easy")
}

func TestStudyModel_GradingAdvances(t *testing.T) {
	app := testApp(t)
	seedNotes(t, app, "Default", "uno", "dos")
	d := newStudyDriver(t, app)

	d.PressSpace()
	d.PressKey('4')

	m := studyState(d)
	require.NotNil(t, m.card)
	assert.Equal(t, "dos", m.card.Note.Front())
	assert.False(t, m.answered)
	assert.Equal(t, 1, m.reviewed)

	d.PressSpace()
	d.PressKey('4')

	m = studyState(d)
	assert.Nil(t, m.card)
	assert.Contains(t, d.View(), "Congratulations!")
	assert.Contains(t, d.View(), "2 cards studied")
}

func TestStudyModel_GradeKeysIgnoredBeforeAnswer(t *testing.T) {
	app := testApp(t)
	seedNotes(t, app, "Default", "uno")
	d := newStudyDriver(t, app)

	d.PressKey('4')

	m := studyState(d)
	require.NotNil(t, m.card)
	assert.Equal(t, 0, m.reviewed)
	counts, err := app.Study.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{}, counts, "the shown card is already dispatched")
}

func TestStudyModel_SuspendSkipsCard(t *testing.T) {
	app := testApp(t)
	ids := seedNotes(t, app, "Default", "uno", "dos")
	d := newStudyDriver(t, app)

	d.PressKey('!')

	m := studyState(d)
	require.NotNil(t, m.card)
	assert.Equal(t, "dos", m.card.Note.Front())
	assert.Contains(t, d.View(), "Suspended card")

	n, err := app.Study.Unsuspend(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStudyModel_HelpToggleAndQuit(t *testing.T) {
	app := testApp(t)
	d := newStudyDriver(t, app)
	assert.Contains(t, d.View(), "Congratulations!")

	d.PressKey('?')
	assert.Contains(t, d.View(), "suspend")

	d.PressKey('q')
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())
}
