package storage

import "github.com/Veraticus/spice-categorizer/internal/model"

// DefaultCategories are the categories installed by the initial migrations.
// They cover every category the default fallback table and seed merchants use.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: "income-salary", Name: "Salary", Type: model.CategoryTypeIncome, Description: "Payroll and wages"},
		{ID: "income-other", Name: "Other Income", Type: model.CategoryTypeIncome, Description: "Refunds, interest and other money in"},
		{ID: "housing", Name: "Housing", Type: model.CategoryTypeExpense, Description: "Rent, mortgage and large home costs"},
		{ID: "shopping", Name: "Shopping", Type: model.CategoryTypeExpense, Description: "General merchandise and online orders"},
		{ID: "groceries", Name: "Groceries", Type: model.CategoryTypeExpense, Description: "Supermarkets and food stores"},
		{ID: "dining", Name: "Dining", Type: model.CategoryTypeExpense, Description: "Restaurants, cafes and takeout"},
		{ID: "transportation", Name: "Transportation", Type: model.CategoryTypeExpense, Description: "Rideshare, transit and fuel"},
		{ID: "travel", Name: "Travel", Type: model.CategoryTypeExpense, Description: "Flights, hotels and rentals"},
		{ID: "entertainment", Name: "Entertainment", Type: model.CategoryTypeExpense, Description: "Streaming, events and games"},
		{ID: "utilities", Name: "Utilities", Type: model.CategoryTypeExpense, Description: "Phone, internet, power and water"},
		{ID: "health", Name: "Health", Type: model.CategoryTypeExpense, Description: "Pharmacy and medical"},
		{ID: "cash", Name: "Cash", Type: model.CategoryTypeExpense, Description: "ATM withdrawals"},
		{ID: "fees", Name: "Fees", Type: model.CategoryTypeExpense, Description: "Bank fees and penalties"},
		{ID: "other", Name: "Other", Type: model.CategoryTypeExpense, Description: "Everything else"},
		{ID: "transfer", Name: "Transfer", Type: model.CategoryTypeSystem, Description: "Movements between own accounts"},
	}
}

// defaultRule is a starter rule in evaluation order.
type defaultRule struct {
	pattern    string
	categoryID string
}

// defaultRules are installed once by migration. Transfers come first so
// "PAYROLL TRANSFER" style descriptions are not mistaken for income.
var defaultRules = []defaultRule{
	{`\b(TRANSFER|XFER|TFR|MOVE\s*MONEY|ACCOUNT\s*TO\s*ACCOUNT)\b`, "transfer"},
	{`\b(WIRE\s*IN|WIRE\s*OUT|WIRE\s*TRANSFER|WIRE\s*XFER)\b`, "transfer"},
	{`\b(TO\s*SAVINGS|FROM\s*SAVINGS|SAVINGS\s*TRANSFER)\b`, "transfer"},
	{`\b(CC\s*PAYMENT|CREDIT\s*CARD\s*PAY|CARD\s*PAYMENT)\b`, "transfer"},
	{`\b(DIRECTDEP|DIRECT\s*DEP|DIR\s*DEP|PAYROLL|SALARY|WAGES)\b`, "income-salary"},
	{`\b(INTEREST|INT\s*EARNED|DIVIDEND)\b`, "income-other"},
	{`\b(REFUND|REIMB|REIMBURSEMENT|CASHBACK|CASH\s*BACK)\b`, "income-other"},
	{`\b(TAX\s*REF|IRS\s*TREAS|SOC\s*SEC|SSA\s*TREAS)\b`, "income-other"},
	{`\b(RENT|MORTGAGE)\b`, "housing"},
	{`\b(ATM|CASH\s*WITHDRAWAL)\b`, "cash"},
	{`\b(OVERDRAFT|SERVICE\s*CHG|MONTHLY\s*FEE|LATE\s*FEE)\b`, "fees"},
}
