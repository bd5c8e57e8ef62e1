// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TransactionType classifies a POS transaction the way the upload pipeline
// always has: a normal purchase, a purchase paid from the customer wallet,
// or a wallet top-up (recarga).
type TransactionType string

const (
	TypePurchase       TransactionType = "purchase"
	TypeWalletPurchase TransactionType = "wallet_purchase"
	TypeRecharge       TransactionType = "recharge"
	TypeUnknown        TransactionType = "unknown"
)

// RawRow is one heterogeneous row from a POS export. Keys vary between
// export versions; all alias resolution happens here in the normalizer,
// never downstream.
type RawRow map[string]string

// Transaction is the canonical in-memory POS event. Immutable once parsed.
type Transaction struct {
	Date       time.Time       `json:"date"`
	Doc        string          `json:"customerId"`
	Name       string          `json:"customerName,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Revenue    float64         `json:"revenue"`
	PaidValue  float64         `json:"paidValue"`
	WashCount  int             `json:"washCount"`
	DryCount   int             `json:"dryCount"`
	Type       TransactionType `json:"type"`
	CouponUsed bool            `json:"couponUsed"`
	CouponCode string          `json:"couponCode,omitempty"`
	Hash       string          `json:"-"`
}

// Result is the outcome of normalizing one snapshot. Malformed rows are
// skipped and counted, never turned into a batch failure.
type Result struct {
	Transactions   []Transaction `json:"-"`
	TotalRows      int           `json:"totalRows"`
	SkippedCount   int           `json:"skippedCount"`
	DuplicateCount int           `json:"duplicateCount"`
}

// ServiceTransactions returns the transactions that represent actual
// machine usage. Wallet top-ups move money but no laundry, so they are
// excluded from revenue pace and service counts.
func (r *Result) ServiceTransactions() []Transaction {
	out := make([]Transaction, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		if tx.Type != TypeRecharge {
			out = append(out, tx)
		}
	}
	return out
}

// Field aliases seen across POS export versions and manual uploads.
var (
	dateAliases    = []string{"Data_Hora", "Data", "data", "date"}
	docAliases     = []string{"Doc_Cliente", "Documento", "doc", "cpf"}
	nameAliases    = []string{"Nome_Cliente", "Nome", "name"}
	phoneAliases   = []string{"Telefone", "phone"}
	grossAliases   = []string{"Valor_Venda", "valor", "revenue", "value"}
	paidAliases    = []string{"Valor_Pago", "paid"}
	machineAliases = []string{"Maquinas", "maquinas", "machines"}
	paymentAliases = []string{"Meio_de_Pagamento", "payment_method"}
	couponAliases  = []string{"Usou_Cupom", "usou_cupom"}
	couponCodeKeys = []string{"Codigo_Cupom", "codigo_cupom"}
)

// Normalizer parses raw POS rows into canonical transactions. It is a pure
// function of its input rows; no state survives between Normalize calls.
type Normalizer struct {
	loc *time.Location
}

// New creates a normalizer that interprets export dates in loc.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Normalize converts raw rows into canonical transactions, dropping and
// counting rows with an unparsable date or an empty document, and dropping
// exact duplicates via the import hash.
func (n *Normalizer) Normalize(rows []RawRow) *Result {
	result := &Result{
		Transactions: make([]Transaction, 0, len(rows)),
		TotalRows:    len(rows),
	}
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		tx, err := n.normalizeRow(row)
		if err != nil {
			logrus.Debugf("skipping row %d: %v", i+1, err)
			result.SkippedCount++
			continue
		}

		if _, dup := seen[tx.Hash]; dup {
			result.DuplicateCount++
			continue
		}
		seen[tx.Hash] = struct{}{}

		result.Transactions = append(result.Transactions, tx)
	}

	if result.SkippedCount > 0 || result.DuplicateCount > 0 {
		logrus.Warnf("normalized %d rows: %d kept, %d skipped, %d duplicates",
			result.TotalRows, len(result.Transactions), result.SkippedCount, result.DuplicateCount)
	}

	return result
}

func (n *Normalizer) normalizeRow(row RawRow) (Transaction, error) {
	rawDate := firstAlias(row, dateAliases)
	date, err := ParseBRDate(rawDate, n.loc)
	if err != nil {
		return Transaction{}, fmt.Errorf("unparsable date: %w", err)
	}

	doc := NormalizeDoc(firstAlias(row, docAliases))
	if doc == "" {
		return Transaction{}, fmt.Errorf("empty customer document")
	}

	gross, err := ParseBRNumber(firstAlias(row, grossAliases))
	if err != nil {
		return Transaction{}, fmt.Errorf("unparsable sale value: %w", err)
	}
	paid, err := ParseBRNumber(firstAlias(row, paidAliases))
	if err != nil {
		return Transaction{}, fmt.Errorf("unparsable paid value: %w", err)
	}
	if gross < 0 {
		return Transaction{}, fmt.Errorf("negative sale value %.2f", gross)
	}

	machines := firstAlias(row, machineAliases)
	wash, dry := CountMachines(machines)

	coupon := strings.EqualFold(strings.TrimSpace(firstAlias(row, couponAliases)), "sim")
	couponCode := strings.TrimSpace(firstAlias(row, couponCodeKeys))
	if couponCode == "" || strings.EqualFold(couponCode, "n/d") {
		couponCode = ""
	} else {
		couponCode = strings.ToUpper(couponCode)
	}

	return Transaction{
		Date:       date,
		Doc:        doc,
		Name:       strings.TrimSpace(firstAlias(row, nameAliases)),
		Phone:      strings.TrimSpace(firstAlias(row, phoneAliases)),
		Revenue:    gross,
		PaidValue:  paid,
		WashCount:  wash,
		DryCount:   dry,
		Type:       classify(machines, firstAlias(row, paymentAliases), gross),
		CouponUsed: coupon,
		CouponCode: couponCode,
		Hash:       importHash(rawDate, firstAlias(row, docAliases), firstAlias(row, grossAliases), machines),
	}, nil
}

// classify mirrors the upload pipeline's transaction typing: recarga rows
// are wallet top-ups, wallet-paid or zero-gross machine rows are wallet
// purchases, machine rows with revenue are normal purchases.
func classify(machines, paymentMethod string, gross float64) TransactionType {
	m := strings.ToLower(machines)
	p := strings.ToLower(paymentMethod)

	if strings.Contains(m, "recarga") {
		return TypeRecharge
	}
	if strings.Contains(p, "saldo da carteira") {
		return TypeWalletPurchase
	}
	if gross == 0 && m != "" {
		return TypeWalletPurchase
	}
	if m != "" && gross > 0 {
		return TypePurchase
	}
	return TypeUnknown
}

// importHash builds the row dedup key over the raw field values, matching
// the hash the upload pipeline stores alongside each transaction.
func importHash(dateTime, doc, gross, machines string) string {
	sum := sha256.Sum256([]byte(dateTime + "|" + doc + "|" + gross + "|" + machines))
	return hex.EncodeToString(sum[:])[:32]
}

func firstAlias(row RawRow, aliases []string) string {
	for _, key := range aliases {
		if v, ok := row[key]; ok && v != "" {
			return v
		}
	}
	return ""
}
