package statusflow

import "fmt"

// Status — закрытый набор состояний заявки (ordem de serviço).
type Status string

const (
	Aberta              Status = "aberta"
	EmDiagnostico       Status = "em_diagnostico"
	AguardandoAprovacao Status = "aguardando_aprovacao"
	AguardandoPeca      Status = "aguardando_peca"
	EmReparo            Status = "em_reparo"
	Testes              Status = "testes"
	Finalizada          Status = "finalizada"
	Entregue            Status = "entregue"
	Cancelada           Status = "cancelada"
)

// All в порядке движения заявки по мастерской.
var All = []Status{
	Aberta,
	EmDiagnostico,
	AguardandoAprovacao,
	AguardandoPeca,
	EmReparo,
	Testes,
	Finalizada,
	Entregue,
	Cancelada,
}

// Initial — статус новой заявки.
const Initial = Aberta

func (s Status) Valid() bool {
	for _, known := range All {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("status desconhecido: %q", raw)
	}
	return s, nil
}

// IsTerminal: entregue и cancelada закрывают жизненный цикл независимо от настроек.
func IsTerminal(s Status) bool {
	return s == Entregue || s == Cancelada
}

// Active — статусы, которые показываются на мониторе мастерской.
func Active() []Status {
	out := make([]Status, 0, len(All))
	for _, s := range All {
		if !IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}
