package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from   Stato
		want   Stato
		wantOK bool
	}{
		{StatoInAttesa, StatoInPreparazione, true},
		{StatoInPreparazione, StatoPronto, true},
		{StatoPronto, StatoCompletato, true},
		{StatoCompletato, StatoCompletato, false},
		{Stato("Annullato"), Stato("Annullato"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := tt.from.Next()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOK || tt.from.Terminal(), tt.from.Valid())
		})
	}
}

func TestValid(t *testing.T) {
	for _, s := range []Stato{StatoInAttesa, StatoInPreparazione, StatoPronto, StatoCompletato} {
		assert.True(t, s.Valid(), s)
	}
	assert.True(t, StatoCompletato.Terminal())
	assert.False(t, Stato("x").Valid())
	assert.False(t, Stato("").Valid())
	assert.False(t, Stato("pronto").Valid())
}

func TestCategoryFromHeading(t *testing.T) {
	assert.Equal(t, "Cucina", CategoryFromHeading("Dashboard Cucina"))
	assert.Equal(t, "Bar", CategoryFromHeading("  Dashboard Bar  "))
	assert.Equal(t, "Griglia", CategoryFromHeading("Griglia"))
}

func TestEnvelopeFrame(t *testing.T) {
	f := Envelope{EventType: EventAggiornaDashboard, Categoria: "Bar"}.Frame()
	assert.Equal(t, EventAggiornaDashboard, f.Event)
	assert.JSONEq(t, `{"categoria":"Bar"}`, string(f.Data))

	p, err := f.Payload()
	require.NoError(t, err)
	assert.Equal(t, "Bar", p.Categoria)

	f = Envelope{EventType: EventAggiornaDashboard}.Frame()
	assert.JSONEq(t, `{}`, string(f.Data))
}

func TestFramePayload(t *testing.T) {
	p, err := Frame{Event: EventJoin}.Payload()
	require.NoError(t, err)
	assert.Empty(t, p.Categoria)

	_, err = Frame{Event: EventJoin, Data: []byte(`"Cucina"`)}.Payload()
	assert.Error(t, err)
}
