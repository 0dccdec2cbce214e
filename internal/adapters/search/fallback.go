package search

import (
	"strings"

	"github.com/mikey/scam-detector/internal/core"
)

var courierResults = []core.SearchResult{
	{
		Title:   "Golpe do Motoboy: Fique alerta! - Febraban",
		Link:    "https://portal.febraban.org.br/noticia/3412/pt-br/",
		Snippet: "No golpe do motoboy, criminosos ligam se passando pelo banco, dizem que o cartão foi clonado e enviam um portador para retirá-lo.",
	},
	{
		Title:   "Golpe do Motoboy: Como funciona e como se proteger - gov.br",
		Link:    "https://www.gov.br/economia/pt-br/assuntos/noticias/2023/golpes-financeiros",
		Snippet: "Nunca entregue seu cartão bancário para nenhum portador ou motoboy. Bancos não recolhem cartões em domicílio.",
	},
}

var impersonationResults = []core.SearchResult{
	{
		Title:   "Golpe do Falso Familiar: Como identificar e evitar - Procon",
		Link:    "https://www.procon.sp.gov.br/golpe-do-falso-familiar/",
		Snippet: "Criminosos se passam por familiares em mensagens alegando troca de número e pedindo dinheiro com urgência.",
	},
	{
		Title:   "Golpe do WhatsApp: O que fazer se alguém se passar por você - G1",
		Link:    "https://g1.globo.com/economia/tecnologia/noticia/2023/08/golpe-do-whatsapp-o-que-fazer.ghtml",
		Snippet: "Sempre confirme por ligação telefônica a identidade de familiares pedindo dinheiro. O golpe do 'filho que trocou de número' é muito comum.",
	},
}

var generalResults = []core.SearchResult{
	{
		Title:   "Informações sobre golpes financeiros - gov.br",
		Link:    "https://www.gov.br/consumidor/pt-br/assuntos/saiba-como-se-proteger/golpes-financeiros",
		Snippet: "Aprenda a identificar golpes financeiros e como se proteger.",
	},
	{
		Title:   "Febraban - Cuidado com golpes",
		Link:    "https://portal.febraban.org.br/pagina/3453/1285/pt-br/seguranca-cuidado-com-golpes",
		Snippet: "Bancos nunca pedem seus dados por email, SMS ou ligação telefônica.",
	},
	{
		Title:   "Golpes financeiros comuns: como se proteger - Banco Central",
		Link:    "https://www.bcb.gov.br/estabilidadefinanceira/golpesefinanciamentos",
		Snippet: "Conheça os golpes mais comuns e saiba como se proteger de fraudes financeiras.",
	},
	{
		Title:   "Dicas para evitar cair em golpes online - CERT.br",
		Link:    "https://cartilha.cert.br/golpes/",
		Snippet: "Informações sobre como identificar e evitar diversos tipos de golpes virtuais.",
	},
	{
		Title:   "Denuncie golpes financeiros - Polícia Civil",
		Link:    "https://www.policiacivil.gov.br/denuncie",
		Snippet: "Denuncie tentativas de golpes financeiros às autoridades policiais.",
	},
}

// fallbackResults picks a canned result set by topic. The returned slice is
// a fresh copy marked as fallback.
func fallbackResults(query string) []core.SearchResult {
	q := strings.ToLower(query)

	set := generalResults
	switch {
	case strings.Contains(q, "motoboy"):
		set = courierResults
	case strings.Contains(q, "familiar"), strings.Contains(q, "filho"), strings.Contains(q, "filha"):
		set = impersonationResults
	}

	results := make([]core.SearchResult, len(set))
	for i, r := range set {
		r.Source = core.SearchSourceFallback
		results[i] = r
	}
	return results
}
