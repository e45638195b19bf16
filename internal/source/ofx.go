package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that lost their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// OFXReader reads OFX/QFX bank and credit card statements. Amounts keep the
// OFX sign: debits are negative.
type OFXReader struct{}

// NewOFXReader creates an OFX reader.
func NewOFXReader() *OFXReader {
	return &OFXReader{}
}

// preprocess fixes common formatting issues in bank-exported OFX files.
func (r *OFXReader) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Read implements Reader.
func (r *OFXReader) Read(ctx context.Context, in io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(r.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		transactions       []model.Transaction
		bankStmts, ccStmts int
	)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		txns, err := r.convertAll(ctx, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txns...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		txns, err := r.convertAll(ctx, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txns...)
	}

	slog.Debug("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (r *OFXReader) convertAll(ctx context.Context, list []ofxgo.Transaction, accountID string) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0, len(list))
	for _, ofxTx := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tx, err := r.convert(ofxTx, accountID)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// convert maps an OFX transaction onto the model.
func (r *OFXReader) convert(ofxTx ofxgo.Transaction, accountID string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.Rat.FloatString(4))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: invalid amount: %w", ofxTx.FiTID, err)
	}

	description := strings.TrimSpace(string(ofxTx.Name))
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && memo != description {
		description = strings.TrimSpace(description + " " + memo)
	}

	return model.Transaction{
		ID:           string(ofxTx.FiTID),
		Date:         ofxTx.DtPosted.Time,
		Description:  description,
		MerchantName: extractMerchantName(ofxTx),
		AccountID:    accountID,
		Amount:       model.NewAmount(amount),
	}, nil
}

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " left behind by "PURCHASE AUTHORIZED ON".
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name carries no merchant.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
