package matching

import (
	"github.com/otherjamesbrown/matchmaker/pkg/survey"
)

const testNameColumn = "Your name"

var testHeaders = []string{
	"Timestamp",
	testNameColumn,
	"Would you like to see Alice again?",
	"Would you like to see Bob again?",
	"Would you like to see Carol again?",
	"Would you like to see Erin again?",
	"Contact [email]",
	"Contact [phone]",
	"Identity [gender]",
	"Interest [reason]",
}

func testPatterns() map[Category]string {
	return map[Category]string{
		CategoryFindName:       `would you like to see (.+?) again`,
		CategoryContactMethods: `contact \[(.+)\]`,
		CategoryIdentityFields: `identity \[(.+)\]`,
		CategoryInterests:      `interest \[(.+)\]`,
	}
}

func testOptions() Options {
	return Options{
		NameColumn: testNameColumn,
		Patterns:   testPatterns(),
	}
}

// testRecord lays out one response in testHeaders order.
func testRecord(name, alice, bob, carol, erin, email, phone, gender, reason string) []string {
	return []string{"2024-05-01 20:00", name, alice, bob, carol, erin, email, phone, gender, reason}
}

// testTable is the three-person scenario: Alice and Bob said yes to each
// other, Carol said yes to Bob only, Erin never responded and Dave is not on
// the guest list.
func testTable(extra ...[]string) *survey.Table {
	records := [][]string{
		testRecord("Alice", "", "Yes", "Yes", "Yes", "alice@example.com", "555-123-4567", "woman, queer", "friendship"),
		testRecord("Bob", "Yes", "", "", "", "bob@example.com", "not a phone", "", ""),
		testRecord("Carol", "No", "Yes", "", "", "", "(555) 987 6543", "woman", "dating"),
		testRecord("Dave", "Yes", "Yes", "Yes", "", "dave@example.com", "", "", ""),
	}
	records = append(records, extra...)
	return survey.NewTable("responses.csv", testHeaders, records)
}

func testClassification() *Classification {
	rules, err := CompileRules(testPatterns())
	if err != nil {
		panic(err)
	}
	return rules.Classify(testHeaders)
}
