package statusflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_TerminalStatesHaveNoEdges(t *testing.T) {
	f := Default()
	for _, s := range []Status{Entregue, Cancelada} {
		next, ok := f.Next[s]
		require.True(t, ok, "status %s must be present", s)
		assert.Empty(t, next)
		assert.True(t, IsTerminal(s))
	}
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.Next[Aberta] = append(a.Next[Aberta], Testes)
	a.Labels[Aberta] = "Mudado"

	b := Default()
	assert.Equal(t, []Status{EmDiagnostico, Cancelada}, b.Next[Aberta])
	assert.Equal(t, "Aberta", b.Label(Aberta))
}

func TestCanTransition_DefaultGraph(t *testing.T) {
	f := Default()

	assert.True(t, f.CanTransition(Aberta, EmDiagnostico))
	assert.True(t, f.CanTransition(Aberta, Cancelada))
	assert.True(t, f.CanTransition(EmReparo, Testes))
	assert.True(t, f.CanTransition(Testes, EmReparo))
	assert.True(t, f.CanTransition(Finalizada, Entregue))

	assert.False(t, f.CanTransition(Aberta, Finalizada))
	assert.False(t, f.CanTransition(AguardandoPeca, Cancelada))
	assert.False(t, f.CanTransition(Entregue, Aberta))
	assert.False(t, f.CanTransition(Cancelada, Aberta))
	assert.False(t, f.CanTransition(EmReparo, EmReparo))
}

func TestParse_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"absent", ""},
		{"blank", "   "},
		{"invalid json", "{not json"},
		{"unknown status", `{"flow":{"aberta":["voando"]}}`},
		{"terminal with edges", `{"flow":{"aberta":["em_diagnostico","cancelada"],"em_diagnostico":["aguardando_aprovacao","aguardando_peca","cancelada"],"aguardando_aprovacao":["aguardando_peca","em_reparo","cancelada"],"aguardando_peca":["em_reparo","aguardando_aprovacao"],"em_reparo":["testes","aguardando_peca"],"testes":["finalizada","em_reparo"],"finalizada":["entregue","em_reparo"],"entregue":["aberta"],"cancelada":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Default(), Parse(tt.raw))
		})
	}
}

func TestDecode_CustomFlow(t *testing.T) {
	raw := `{
		"labels": {"em_reparo": "Na Bancada"},
		"flow": {
			"aberta": ["em_diagnostico", "cancelada"],
			"em_diagnostico": ["em_reparo", "cancelada"],
			"aguardando_aprovacao": ["em_reparo"],
			"aguardando_peca": ["em_reparo"],
			"em_reparo": ["testes", "aguardando_peca", "aguardando_aprovacao"],
			"testes": ["finalizada"],
			"finalizada": ["entregue"],
			"entregue": [],
			"cancelada": []
		}
	}`

	f, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Na Bancada", f.Label(EmReparo))
	assert.Equal(t, "Aberta", f.Label(Aberta), "missing labels come from defaults")
	assert.True(t, f.CanTransition(EmDiagnostico, EmReparo))
	assert.False(t, f.CanTransition(EmDiagnostico, AguardandoAprovacao))
}

func TestDecode_LabelsOnlyKeepsDefaultEdges(t *testing.T) {
	f, err := Decode(`{"labels":{"testes":"Controle de Qualidade"}}`)
	require.NoError(t, err)

	assert.Equal(t, "Controle de Qualidade", f.Label(Testes))
	assert.Equal(t, Default().Next, f.Next)
}

func TestValidate_RejectsOrphanAndDeadEnd(t *testing.T) {
	f := Default()
	// aguardando_aprovacao теряет все входящие рёбра
	f.Next[EmDiagnostico] = []Status{AguardandoPeca, Cancelada}
	f.Next[AguardandoPeca] = []Status{EmReparo}

	err := f.Validate()
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "aguardando_aprovacao: inalcançável")

	f = Default()
	f.Next[Testes] = []Status{EmReparo}
	f.Next[EmReparo] = []Status{Testes}
	f.Next[Finalizada] = []Status{Entregue}
	err = f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "em_reparo: não leva a um status final")
}

func TestValidate_StructuralProblems(t *testing.T) {
	f := Default()
	f.Next[Aberta] = []Status{Aberta, EmDiagnostico, EmDiagnostico, Cancelada}
	delete(f.Next, Testes)

	err := f.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "aberta: transição para o próprio status")
	assert.Contains(t, msg, "aberta: destino em_diagnostico repetido")
	assert.Contains(t, msg, "testes: status ausente no fluxo")
}

func TestValidate_AllowsReworkCycles(t *testing.T) {
	f := Default()
	f.Next[Testes] = []Status{Finalizada, EmReparo, AguardandoPeca}
	assert.NoError(t, f.Validate())
}

func TestEncode_RoundTripsThroughDecode(t *testing.T) {
	f := Default()
	f.Labels[Finalizada] = "Pronta p/ Retirada"

	raw, err := f.Encode()
	require.NoError(t, err)
	assert.Contains(t, raw, `"flow"`)
	assert.Contains(t, raw, `"labels"`)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestParseStatusAndActive(t *testing.T) {
	s, err := ParseStatus("em_reparo")
	require.NoError(t, err)
	assert.Equal(t, EmReparo, s)

	_, err = ParseStatus("em reparo")
	assert.Error(t, err)

	active := Active()
	assert.Len(t, active, 7)
	assert.NotContains(t, active, Entregue)
	assert.NotContains(t, active, Cancelada)
}

func TestViews(t *testing.T) {
	views := Default().Views()
	require.Len(t, views, len(All))
	assert.Equal(t, Aberta, views[0].Status)
	assert.Equal(t, "Em Bancada / Realizando Reparo", views[4].Label)
	assert.True(t, views[7].Terminal)
	assert.NotNil(t, views[8].Next)
}
