package dispatch

import (
	"fmt"
	"strings"

	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
)

const dateBR = "02/01/2006"

// PixSettings fills the payment block of the due-today client message.
type PixSettings struct {
	Key           string
	ReceiverName  string
	MessagePrefix string
}

func productLabel(p *model.Product, fallback string) string {
	if p == nil {
		return fallback
	}
	return p.Label()
}

func clientName(c *model.Client, fallback string) string {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return fallback
	}
	return strings.TrimSpace(c.Name)
}

func clientPhone(c *model.Client) string {
	if c == nil {
		return "-"
	}
	return money.FormatPhone(c.Phone)
}

// FinanceNoticeText announces a new payable to the owner.
func FinanceNoticeText(f *model.Finance) string {
	return "*📌 Nova Conta Adicionada!!!*\n" +
		fmt.Sprintf("🏦 Empresa: %s\n", f.Company) +
		fmt.Sprintf("💰 Valor: %s\n", money.FormatBRL(f.Amount)) +
		fmt.Sprintf("📆 Venc.: %s\n", f.DueDate.Format(dateBR))
}

// DueSoonText reminds the owner of an upcoming installment.
func DueSoonText(inst *model.Installment) string {
	var c *model.Client
	var p *model.Product
	if inst.Promissory != nil {
		c = inst.Promissory.Client
		p = inst.Promissory.ResolveProduct()
	}
	return "📅 Lembrete!!!\n" +
		fmt.Sprintf("👤 Cliente: %s\n", clientName(c, "-")) +
		fmt.Sprintf("📞 Telefone: %s\n", clientPhone(c)) +
		fmt.Sprintf("🏍️ Modelo: %s\n", productLabel(p, "Produto -")) +
		fmt.Sprintf("💰 Valor: %s\n", money.FormatBRL(inst.Amount)) +
		fmt.Sprintf("📆 Venc.: %s\n", inst.DueDate.Format(dateBR))
}

// DueTodayText is sent to the client with the PIX payment data.
func DueTodayText(inst *model.Installment, pix PixSettings) string {
	var c *model.Client
	var p *model.Product
	if inst.Promissory != nil {
		c = inst.Promissory.Client
		p = inst.Promissory.ResolveProduct()
	}
	label := productLabel(p, "sua compra")
	due := inst.DueDate.Format(dateBR)
	return fmt.Sprintf("Olá, %s! 👋\n", clientName(c, "Cliente")) +
		fmt.Sprintf("Hoje (%s) vence sua parcela de %s.\n\n", due, label) +
		fmt.Sprintf("💰 Valor: *%s*\n", money.FormatBRL(inst.Amount)) +
		fmt.Sprintf("🔑 Chave Pix: `%s`\n", pix.Key) +
		fmt.Sprintf("👤 Favorecido: %s\n", pix.ReceiverName) +
		fmt.Sprintf("📝 Descrição: %s %s (%s)\n\n", pix.MessagePrefix, label, due) +
		"Assim que pagar, responda com o comprovante. Obrigado!"
}

// OverdueText alerts the owner of a late installment.
func OverdueText(inst *model.Installment) string {
	var c *model.Client
	var p *model.Product
	if inst.Promissory != nil {
		c = inst.Promissory.Client
		p = inst.Promissory.ResolveProduct()
	}
	return fmt.Sprintf("⚠️ *PARCELA ATRASADA - %s*\n", productLabel(p, "Produto -")) +
		fmt.Sprintf("👤 Cliente: %s\n", clientName(c, "-")) +
		fmt.Sprintf("📞 Telefone: %s\n", clientPhone(c)) +
		fmt.Sprintf("💰 Parcela: %s • Venc: %s", money.FormatBRL(inst.Amount), inst.DueDate.Format(dateBR))
}
