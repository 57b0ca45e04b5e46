package dictionary

import (
	"strings"

	"github.com/Veraticus/spice-extract/internal/model"
)

// word matches any of alts as a whole word. Go's \b only knows ASCII
// letters, so Cyrillic words need explicit letter boundaries.
func word(alts ...string) string {
	return `(?:^|[^\p{L}])(?:` + strings.Join(alts, "|") + `)(?:$|[^\p{L}])`
}

// Default returns the built-in tables.
func Default() Dictionary {
	return Dictionary{
		Templates:       defaultTemplates(),
		Dialects:        defaultDialects(),
		Entities:        defaultEntities(),
		Keywords:        defaultKeywords(),
		ServiceKeywords: defaultServiceKeywords(),
		TotalKeywords:   defaultTotalKeywords(),
	}
}

func defaultTemplates() []TemplateSpec {
	return []TemplateSpec{
		// Legal entity names survive OCR better than stylized logos.
		{Name: "pyaterochka", Specificity: 20, Patterns: []string{`пят[её]р[оa0]чк`, `агроторг`, `pyaterochka`}},
		{Name: "perekrestok", Specificity: 20, Patterns: []string{`перекр[её]ст[оa0]к`, `perekrestok`}},
		{Name: "magnit", Specificity: 10, Patterns: []string{word(`магнит`), `тандер`, `magnit`}},
		{Name: "vkusvill", Specificity: 10, Patterns: []string{`вкус\s*вилл`, `vkusvill`}},
		{Name: "lenta", Specificity: 5, Patterns: []string{word(`лента`), `lenta`}},
		{Name: "auchan", Specificity: 5, Patterns: []string{word(`ашан`), `auchan`}},
	}
}

func defaultDialects() []TemplateSpec {
	return []TemplateSpec{
		{Name: "tinkoff", Specificity: 10, Patterns: []string{`тинькофф`, `tinkoff`, `т-банк`, `\btbank\b`}},
		{Name: "sberbank", Specificity: 10, Patterns: []string{`сбербанк`, `sberbank`, word(`пао\s+сбер`)}},
		{Name: "alfa", Specificity: 10, Patterns: []string{`альфа[-\s]*банк`, `alfa[-\s]*bank`}},
	}
}

func staples() []EntitySpec {
	return []EntitySpec{
		{Name: "Молоко", Category: "Dairy", Patterns: []string{word(`молоко`)}},
		{Name: "Кефир", Category: "Dairy", Patterns: []string{word(`кефир`)}},
		{Name: "Хлеб", Category: "Bakery", Patterns: []string{word(`хлеб`, `батон`)}},
		{Name: "Яйца", Category: "Groceries", Patterns: []string{word(`яйц[оа]`)}},
		{Name: "Пакет", Category: "Household", Patterns: []string{word(`пакет`)}},
	}
}

func defaultEntities() map[string][]EntitySpec {
	return map[string][]EntitySpec{
		"pyaterochka": append(staples(),
			EntitySpec{Name: "Красная цена", Category: "Groceries", Patterns: []string{`красная\s+цена`}},
		),
		"perekrestok": staples(),
		"magnit":      staples(),
		"vkusvill": append(staples(),
			EntitySpec{Name: "Вода ВкусВилл", Category: "Beverages", Patterns: []string{word(`вода`)}},
		),
		"lenta":  staples(),
		"auchan": staples(),
	}
}

func defaultKeywords() []model.CategoryRule {
	expense, income := model.CategoryTypeExpense, model.CategoryTypeIncome
	return []model.CategoryRule{
		{Name: "Salary", Type: income, Patterns: []string{"зарплата", "заработная плата", "salary", "payroll"}},
		{Name: "Interest", Type: income, Patterns: []string{"проценты на остаток", "капитализация", "interest"}},
		{Name: "Cashback", Type: income, Patterns: []string{"кэшбэк", "кешбек", "cashback"}},
		{Name: "Refund", Type: income, Patterns: []string{"возврат", "refund"}},
		{Name: "Transfers", Type: income, Patterns: []string{"перевод от", "пополнение", "transfer from"}},

		{Name: "Dairy", Type: expense, Patterns: []string{"молоко", "кефир", "сметана", "творог", "йогурт", "сыр", "масло слив", "milk", "cheese", "yogurt"}},
		{Name: "Bakery", Type: expense, Patterns: []string{"хлеб", "батон", "булка", "багет", "лаваш", "bread", "bagel"}},
		{Name: "Produce", Type: expense, Patterns: []string{"банан", "яблок", "картоф", "томат", "огурц", "морковь", "banana", "apple", "potato"}},
		{Name: "Meat", Type: expense, Patterns: []string{"курин", "говяд", "свинин", "фарш", "колбас", "сосиск", "chicken", "beef", "pork"}},
		{Name: "Beverages", Type: expense, Patterns: []string{"вода", "сок", "лимонад", "кока-кола", "pepsi", "чай", "кофе зерн", "water", "juice"}},
		{Name: "Household", Type: expense, Patterns: []string{"пакет", "салфет", "туалетн", "моющ", "порошок", "detergent"}},
		{Name: "Pharmacy", Type: expense, Patterns: []string{"аптека", "apteka", "pharmacy"}},
		{Name: "Cafe", Type: expense, Patterns: []string{"кофейня", "кафе", "ресторан", "starbucks", "coffee", "cafe"}},
		{Name: "Transport", Type: expense, Patterns: []string{"такси", "метро", "яндекс.такси", "uber", "metro", "taxi"}},
		{Name: "Fuel", Type: expense, Patterns: []string{"азс", "лукойл", "газпромнефть", "роснефть", "fuel"}},
		{Name: "Utilities", Type: expense, Patterns: []string{"жкх", "мосэнерго", "электроэнерг", "интернет", "utility"}},
		{Name: "Groceries", Type: expense, Patterns: []string{"пятерочка", "перекресток", "магнит", "вкусвилл", "лента", "ашан", "grocery", "supermarket"}},
	}
}

func defaultServiceKeywords() []string {
	return []string{
		word(`итог[оа]?`, `всего`, `к\s*оплате`, `сдача`, `наличн\p{L}*`, `безналичн\p{L}*`),
		word(`карт(?:а|ой|ы|у)`, `оплата`, `терминал`, `кассир`, `смена`, `ндс`, `без\s+ндс`, `инн`, `кпп`),
		word(`фн`, `фд`, `фп`, `ккт`, `рн\s*ккт`, `зн\s*ккт`, `сно`, `кассовый\s+чек`, `приход`, `возврат\s+прихода`),
		word(`скидк\p{L}*`, `бонус\p{L}*`, `баллы`, `сумма\s+без\s+скидки`),
		`\b(?:total|subtotal|sub-total|change|cash|card|visa|mastercard|mir|terminal|cashier|tax|vat|balance|auth|approved|payment)\b`,
	}
}

func defaultTotalKeywords() []string {
	return []string{
		word(`итог[оа]?`),
		word(`к\s*оплате`),
		word(`всего`),
		word(`сумма\s+по\s+чеку`),
		`\b(?:grand\s+)?total\b`,
		`\b(?:sum|amount)\s+due\b`,
	}
}
