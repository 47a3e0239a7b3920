package schedule_test

import (
	"fmt"
	"log"
	"time"

	"fic-expenses/internal/schedule"
	"github.com/shopspring/decimal"
)

// Example splits an expense into five end-of-month installments.
func Example() {
	total := decimal.RequireFromString("610.00")
	anchor := schedule.Day(2025, time.January, 10)

	installments, err := schedule.Schedule(total, 5, anchor, schedule.EndOfMonth)
	if err != nil {
		log.Fatal(err)
	}

	for i, inst := range installments {
		fmt.Printf("%d. %s  %s\n", i+1, schedule.FormatDate(inst.DueDate), inst.Amount.StringFixed(2))
	}
	// Output:
	// 1. 2025-02-28  122.00
	// 2. 2025-03-31  122.00
	// 3. 2025-04-30  122.00
	// 4. 2025-05-31  122.00
	// 5. 2025-06-30  122.00
}

// ExampleExpand shows a quarterly expense repeated four times.
func ExampleExpand() {
	occurrences, err := schedule.Expand(
		schedule.Day(2025, time.January, 15),
		schedule.Day(2025, time.February, 28),
		schedule.Quarterly.Months(),
		4,
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, occ := range occurrences {
		fmt.Printf("%s first due %s\n", schedule.FormatDate(occ.ExpenseDate), schedule.FormatDate(occ.FirstDueDate))
	}
	// Output:
	// 2025-01-15 first due 2025-02-28
	// 2025-04-15 first due 2025-05-28
	// 2025-07-15 first due 2025-08-28
	// 2025-10-15 first due 2025-11-28
}

// ExampleApplyPayment pays the second of three installments and summarizes.
func ExampleApplyPayment() {
	installments, err := schedule.Schedule(decimal.RequireFromString("100.00"), 3,
		schedule.Day(2025, time.March, 1), schedule.SameDay)
	if err != nil {
		log.Fatal(err)
	}

	paid, err := schedule.ApplyPayment(installments, schedule.Installment(2),
		time.Time{}, schedule.Day(2025, time.March, 1), 1001)
	if err != nil {
		log.Fatal(err)
	}

	summary := schedule.Summarize(paid)
	fmt.Println(summary.Label)
	fmt.Println("next due:", schedule.FormatDate(*summary.NextDue))
	fmt.Println("paid on:", schedule.FormatDate(paid[1].PaidDate))
	// Output:
	// 1/3 paid
	// next due: 2025-03-01
	// paid on: 2025-04-01
}
