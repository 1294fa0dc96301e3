package types

import "strings"

// GenericErrorMessage is shown when the server gives no usable detail.
const GenericErrorMessage = "Erro ao comunicar com o servidor"

// Noun is the display name of an entity with its grammatical gender, used to
// build localized confirmation and error messages.
type Noun struct {
	Name     string
	Feminine bool
}

func (n Noun) suffix() string {
	if n.Feminine {
		return "a"
	}
	return "o"
}

// Created returns e.g. "Caixa criada com sucesso".
func (n Noun) Created() string {
	return n.Name + " criad" + n.suffix() + " com sucesso"
}

// Updated returns e.g. "Caixa atualizada com sucesso".
func (n Noun) Updated() string {
	return n.Name + " atualizad" + n.suffix() + " com sucesso"
}

// Deleted returns e.g. "Caixa excluída com sucesso".
func (n Noun) Deleted() string {
	return n.Name + " excluíd" + n.suffix() + " com sucesso"
}

// NotFound returns e.g. "Caixa não encontrada".
func (n Noun) NotFound() string {
	return n.Name + " não encontrad" + n.suffix()
}

// InUse returns e.g. "Caixa possui registros vinculados e não pode ser
// excluída".
func (n Noun) InUse() string {
	return n.Name + " possui registros vinculados e não pode ser excluíd" + n.suffix()
}

// Failed returns the error notice for a failed operation, e.g.
// "Erro ao excluir caixa".
func (n Noun) Failed(verb string) string {
	return "Erro ao " + verb + " " + strings.ToLower(n.Name)
}

// Entity describes one REST collection: its path segment, the response key
// of a single item and its display noun.
type Entity struct {
	Path string
	Key  string
	Noun Noun
}

// Collections exposed under /api.
var (
	EntityCity      = Entity{Path: "cidades", Key: "cidade", Noun: Noun{Name: "Cidade", Feminine: true}}
	EntityBox       = Entity{Path: "caixas", Key: "caixa", Noun: Noun{Name: "Caixa", Feminine: true}}
	EntityPort      = Entity{Path: "portas", Key: "porta", Noun: Noun{Name: "Porta", Feminine: true}}
	EntityTray      = Entity{Path: "bandejas", Key: "bandeja", Noun: Noun{Name: "Bandeja", Feminine: true}}
	EntitySplitter  = Entity{Path: "spliters", Key: "spliter", Noun: Noun{Name: "Spliter"}}
	EntityCapillary = Entity{Path: "capilares", Key: "capilar", Noun: Noun{Name: "Capilar"}}
	EntityRoute     = Entity{Path: "rotas", Key: "rota", Noun: Noun{Name: "Rota", Feminine: true}}
	EntityTube      = Entity{Path: "tubos", Key: "tubo", Noun: Noun{Name: "Tubo"}}
	EntityFusion    = Entity{Path: "fusoes", Key: "fusao", Noun: Noun{Name: "Fusão", Feminine: true}}
	EntityClient    = Entity{Path: "clientes", Key: "cliente", Noun: Noun{Name: "Cliente"}}
)
