package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// PixConfig vem do ambiente (.env): chave recebedora e dados do lojista
// que entram no payload copia-e-cola.
type PixConfig struct {
	Key          string // chave PIX do clube (e-mail, telefone ou EVP)
	MerchantName string // máx 25 caracteres no payload
	MerchantCity string // máx 15 caracteres no payload
}

// PixService gera payloads EMV "BR Code" estáticos para cobrança de
// comanda: (comanda, valor) -> string copia-e-cola. Sem estado; a
// renderização do QR em imagem fica fora daqui.
type PixService struct {
	config *PixConfig
}

func NewPixService() *PixService {
	return &PixService{
		config: &PixConfig{
			Key:          os.Getenv("PIX_KEY"),
			MerchantName: os.Getenv("PIX_MERCHANT_NAME"),
			MerchantCity: os.Getenv("PIX_MERCHANT_CITY"),
		},
	}
}

// ValidateConfig confere se o ambiente trouxe tudo que o payload exige.
func (ps *PixService) ValidateConfig() error {
	if ps.config.Key == "" {
		return errors.New("PIX_KEY não configurada")
	}
	if ps.config.MerchantName == "" {
		return errors.New("PIX_MERCHANT_NAME não configurado")
	}
	if ps.config.MerchantCity == "" {
		return errors.New("PIX_MERCHANT_CITY não configurada")
	}
	return nil
}

// GeneratePayload monta o BR Code estático para o valor da comanda.
func (ps *PixService) GeneratePayload(tabID uint, amount decimal.Decimal) (string, error) {
	if err := ps.ValidateConfig(); err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", &ValidationError{Msg: "valor da cobrança deve ser maior que zero"}
	}

	merchantAccount := emvField("00", "br.gov.bcb.pix") + emvField("01", ps.config.Key)
	txid := fmt.Sprintf("COMANDA%d", tabID)
	additionalData := emvField("05", txid)

	var b strings.Builder
	b.WriteString(emvField("00", "01"))                           // payload format indicator
	b.WriteString(emvField("26", merchantAccount))                // merchant account info (PIX)
	b.WriteString(emvField("52", "0000"))                         // merchant category code
	b.WriteString(emvField("53", "986"))                          // moeda: BRL
	b.WriteString(emvField("54", amount.StringFixed(2)))          // valor
	b.WriteString(emvField("58", "BR"))                           // país
	b.WriteString(emvField("59", clip(ps.config.MerchantName, 25)))
	b.WriteString(emvField("60", clip(ps.config.MerchantCity, 15)))
	b.WriteString(emvField("62", additionalData))                 // txid
	b.WriteString("6304") // o CRC cobre o payload incluindo o próprio "6304"

	payload := b.String()
	return payload + fmt.Sprintf("%04X", crc16CCITT([]byte(payload))), nil
}

// emvField serializa um campo TLV do padrão EMV MPM: id + tamanho(2) + valor.
func emvField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// clip corta em RUNAS, não em bytes: nomes com acento (ex: "SÃO JOSÉ")
// cortados no meio de um UTF-8 multibyte produziriam payload inválido.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}

// crc16CCITT calcula o checksum exigido pelo campo 63 (polinômio 0x1021,
// valor inicial 0xFFFF, sem reflexão).
func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
