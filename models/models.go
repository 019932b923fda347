package models

// All lists every migratable model; shared by database.Connect and the
// test harnesses.
func All() []any {
	return []any{
		&User{},
		&PointTransaction{},
		&Voucher{},
		&VoucherUsage{},
		&RedemptionAttempt{},
		&Package{},
		&CustomerPackage{},
		&PaymentEvent{},
	}
}
