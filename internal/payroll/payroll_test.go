package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func uniform(regular, overtime decimal.Decimal) Attendance {
	var a Attendance
	for i := range a {
		a[i] = DayHours{Regular: regular, Overtime: overtime}
	}
	return a
}

func fullWeek(avance float64) Record {
	return Record{
		ID:                  "rec-1",
		SalaireHebdomadaire: dec(570),
		Attendance:          uniform(dec(9), decimal.Zero),
		Avance:              dec(avance),
	}
}

func TestDeriveRates(t *testing.T) {
	rates := DeriveRates(dec(570))
	assert.True(t, rates.Daily.Equal(dec(95)), "daily %s", rates.Daily)
	assert.True(t, rates.Hourly.Equal(dec(10)), "hourly %s", rates.Hourly)
}

func TestDeriveRatesZeroSalary(t *testing.T) {
	rates := DeriveRates(decimal.Zero)
	assert.True(t, rates.Daily.IsZero())
	assert.True(t, rates.Hourly.IsZero())
}

func TestDeriveRatesMatchesDivisors(t *testing.T) {
	for _, salary := range []float64{0, 1, 99.99, 500, 570, 1234.56, 10000} {
		rates := DeriveRates(dec(salary))
		assert.InDelta(t, salary/6, rates.Daily.InexactFloat64(), 1e-9)
		assert.InDelta(t, salary/6/9.5, rates.Hourly.InexactFloat64(), 1e-9)
	}
}

func TestNewScheduleRejectsZeroDivisors(t *testing.T) {
	_, err := NewSchedule(0, 9.5)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	s, err := NewSchedule(5, 8)
	require.NoError(t, err)
	rates := s.DeriveRates(dec(400))
	assert.True(t, rates.Daily.Equal(dec(80)))
	assert.True(t, rates.Hourly.Equal(dec(10)))
}

func TestComputePayFullWeek(t *testing.T) {
	c := ComputePay(fullWeek(200))

	assert.True(t, c.NormalHours.Equal(dec(54)))
	assert.True(t, c.ExtraHours.IsZero())
	assert.True(t, c.TotalHours.Equal(dec(54)))
	assert.True(t, c.HourlyRate.Equal(dec(10)))
	assert.True(t, c.TotalSalaire.Equal(dec(540)))
	assert.True(t, c.Reste.Equal(dec(340)))

	action, ok := AvailableAction(c, false)
	require.True(t, ok)
	assert.Equal(t, ActionPay, action)
}

func TestComputePayOverAdvanced(t *testing.T) {
	r := fullWeek(600)
	c := ComputePay(r)
	assert.True(t, c.Reste.Equal(dec(-60)))

	for _, paid := range []bool{false, true} {
		_, ok := AvailableAction(c, paid)
		assert.False(t, ok, "no control expected when reste <= 0 (paid=%v)", paid)
	}
}

func TestComputePayNoHours(t *testing.T) {
	r := Record{SalaireHebdomadaire: dec(570), Avance: dec(50)}
	c := ComputePay(r)
	assert.True(t, c.TotalHours.IsZero())
	assert.True(t, c.TotalSalaire.IsZero())
	assert.True(t, c.Reste.Equal(dec(-50)))
}

func TestComputePayCountsOvertime(t *testing.T) {
	r := fullWeek(0)
	r.Attendance[Monday].Overtime = dec(2)
	r.Attendance[Saturday].Overtime = dec(1.5)

	c := ComputePay(r)
	assert.True(t, c.ExtraHours.Equal(dec(3.5)))
	assert.True(t, c.TotalHours.Equal(c.NormalHours.Add(c.ExtraHours)))
	assert.True(t, c.TotalSalaire.Equal(dec(575)))
	assert.True(t, c.Reste.Equal(c.TotalSalaire.Sub(r.Avance)))
}

func TestComputePayFullScheduleEarnsExactSalary(t *testing.T) {
	r := Record{
		ID:                  "rec-7",
		SalaireHebdomadaire: dec(7),
		Attendance:          uniform(dec(9.5), decimal.Zero),
		Avance:              dec(7),
	}

	c := ComputePay(r)
	assert.True(t, c.TotalHours.Equal(dec(57)))
	assert.True(t, c.TotalSalaire.Equal(dec(7)), "salaire %s", c.TotalSalaire)
	assert.True(t, c.Reste.IsZero(), "reste %s", c.Reste)

	_, ok := AvailableAction(c, false)
	assert.False(t, ok)
	assert.Error(t, CheckTransition(r.ID, c, false, ActionPay))
	assert.True(t, Due(c, false).IsZero())
}

func TestSubCentBalanceIsSettled(t *testing.T) {
	r := Record{
		ID:                  "rec-8",
		SalaireHebdomadaire: dec(7),
		Attendance:          uniform(dec(9.5), decimal.Zero),
		Avance:              dec(7.06),
	}
	r.Attendance[Saturday].Regular = dec(10)

	c := ComputePay(r)
	require.True(t, c.Reste.IsPositive(), "reste %s", c.Reste)
	assert.True(t, Balance(c).IsZero())

	_, ok := AvailableAction(c, false)
	assert.False(t, ok)
	var gv *GuardViolation
	require.ErrorAs(t, CheckTransition(r.ID, c, false, ActionPay), &gv)
	assert.True(t, Due(c, false).IsZero())

	r.Avance = dec(7)
	c = ComputePay(r)
	assert.True(t, Due(c, false).Equal(dec(0.06)))
}

func TestComputePaySumsExactlySixDays(t *testing.T) {
	var a Attendance
	for i, d := range Days() {
		a[d].Regular = dec(float64(i + 1))
	}
	assert.Len(t, a, 6)
	assert.True(t, a.NormalHours().Equal(dec(21)))
}

func TestComputePayIsIdempotent(t *testing.T) {
	r := fullWeek(123.45)
	r.Attendance[Wednesday].Overtime = dec(0.75)
	assert.Equal(t, ComputePay(r), ComputePay(r))
}

func TestStateMachine(t *testing.T) {
	r := fullWeek(200)
	c := ComputePay(r)

	action, err := NewPaymentAction(r, c, ActionPay)
	require.NoError(t, err)
	assert.Equal(t, PaymentAction{RecordID: "rec-1", Type: ActionPay}, action)

	r.IsPaid = Apply(r.IsPaid, ActionPay)
	assert.True(t, r.IsPaid)
	assert.Equal(t, StatePaid, StateOf(r.IsPaid))
	assert.True(t, Due(c, r.IsPaid).IsZero())

	_, err = NewPaymentAction(r, c, ActionPay)
	var gv *GuardViolation
	require.ErrorAs(t, err, &gv)

	_, err = NewPaymentAction(r, c, ActionUndo)
	require.NoError(t, err)
	r.IsPaid = Apply(r.IsPaid, ActionUndo)
	assert.False(t, r.IsPaid)

	again := ComputePay(r)
	assert.True(t, again.Reste.Equal(dec(340)))
	assert.True(t, Due(again, r.IsPaid).Equal(dec(340)))
}

func TestPayGuardRejectsNonPositiveBalance(t *testing.T) {
	for _, avance := range []float64{540, 600} {
		r := fullWeek(avance)
		c := ComputePay(r)
		err := CheckTransition(r.ID, c, false, ActionPay)
		var gv *GuardViolation
		require.ErrorAs(t, err, &gv)
		assert.Equal(t, ActionPay, gv.Action)
		assert.Equal(t, StateUnpaid, gv.State)
	}
}

func TestUndoIgnoresBalanceSign(t *testing.T) {
	c := ComputePay(fullWeek(600))
	assert.NoError(t, CheckTransition("rec-1", c, true, ActionUndo))
	assert.Error(t, CheckTransition("rec-1", c, false, ActionUndo))
}

func TestCheckTransitionUnknownAction(t *testing.T) {
	err := CheckTransition("x", Computation{}, false, ActionType("refund"))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ParseActionType("PAY")
	assert.NoError(t, err)
	_, err = ParseActionType("refund")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestAggregateYear(t *testing.T) {
	weeks := []WeekTotal{
		{WeekID: 1, WeekText: "Jan-W1", Month: time.January, TotalAmount: dec(340)},
		{WeekID: 2, WeekText: "Jan-W2", Month: time.January, TotalAmount: decimal.Zero},
		{WeekID: 3, WeekText: "Feb-W1", Month: time.February, TotalAmount: dec(150)},
	}

	months := AggregateYear(weeks, GroupByWeekMonth)
	require.Len(t, months, 2)

	assert.Equal(t, "Janvier", months[0].Name)
	assert.Len(t, months[0].Weeks, 2)
	assert.Equal(t, "Jan-W1", months[0].Weeks[0].WeekText)
	assert.True(t, months[0].TotalAmount.Equal(dec(340)))

	assert.Equal(t, "Février", months[1].Name)
	assert.True(t, months[1].TotalAmount.Equal(dec(150)))

	assert.True(t, YearTotal(months).Equal(dec(490)))
}

func TestAggregateYearPreservesSuppliedOrder(t *testing.T) {
	weeks := []WeekTotal{
		{WeekID: 9, Month: time.March, TotalAmount: dec(1)},
		{WeekID: 10, Month: time.March, TotalAmount: dec(5)},
		{WeekID: 4, Month: time.January, TotalAmount: dec(2)},
		{WeekID: 7, Month: time.March, TotalAmount: dec(3)},
	}
	months := AggregateYear(weeks, GroupByWeekMonth)
	require.Len(t, months, 3)

	assert.Equal(t, "Mars", months[0].Name)
	require.Len(t, months[0].Weeks, 2)
	assert.Equal(t, uint(9), months[0].Weeks[0].WeekID)
	assert.Equal(t, uint(10), months[0].Weeks[1].WeekID)
	assert.True(t, months[0].TotalAmount.Equal(dec(6)))

	assert.Equal(t, "Janvier", months[1].Name)

	assert.Equal(t, "Mars", months[2].Name)
	require.Len(t, months[2].Weeks, 1)
	assert.Equal(t, uint(7), months[2].Weeks[0].WeekID)
	assert.True(t, months[2].TotalAmount.Equal(dec(3)))

	assert.True(t, YearTotal(months).Equal(dec(11)))
}

func TestAggregateYearEmpty(t *testing.T) {
	months := AggregateYear(nil, GroupByWeekMonth)
	assert.Empty(t, months)
	assert.True(t, YearTotal(months).IsZero())
}

func TestAggregateFetched(t *testing.T) {
	paid := ComputePay(fullWeek(200))
	fetches := []WeekFetch{
		{Week: WeekTotal{WeekID: 1, Month: time.January}, Computations: []Computation{paid, paid}},
		{Week: WeekTotal{WeekID: 2, Month: time.February}},
	}

	months, total, err := AggregateFetched(fetches, GroupByWeekMonth)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.True(t, months[0].TotalAmount.Equal(dec(1080)))
	assert.True(t, months[1].TotalAmount.IsZero())
	assert.True(t, total.Equal(dec(1080)))
}

func TestAggregateFetchedReportsFailures(t *testing.T) {
	boom := errors.New("connection reset")
	fetches := []WeekFetch{
		{Week: WeekTotal{WeekID: 1, Month: time.January}},
		{Week: WeekTotal{WeekID: 2, Month: time.January}, Err: boom},
	}

	months, total, err := AggregateFetched(fetches, GroupByWeekMonth)
	assert.Nil(t, months)
	assert.True(t, total.IsZero())

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	require.Len(t, incomplete.Failures, 1)
	assert.Equal(t, uint(2), incomplete.Failures[0].WeekID)
	assert.ErrorIs(t, err, boom)
}

func TestNavigation(t *testing.T) {
	next, prev := uint(3), uint(1)

	got := NavigateWeek(Next, Adjacency[uint]{Current: 2, Next: &next, Prev: &prev})
	require.NotNil(t, got)
	assert.Equal(t, uint(3), *got)

	assert.Nil(t, NavigateWeek(Prev, Adjacency[uint]{Current: 1, Next: &next}))
	assert.Nil(t, NavigateWeek(Next, Adjacency[uint]{Current: 3, Prev: &prev}))

	y := 2023
	gotYear := NavigateYear(Prev, Adjacency[int]{Current: 2024, Prev: &y})
	require.NotNil(t, gotYear)
	assert.Equal(t, 2023, *gotYear)
	assert.Nil(t, NavigateYear(Next, Adjacency[int]{Current: 2024, Prev: &y}))
	assert.Nil(t, NavigateYear(Direction("sideways"), Adjacency[int]{Current: 2024, Prev: &y}))
}

func TestValidateUpdate(t *testing.T) {
	var u RecordUpdate
	var verr *ValidationError
	require.ErrorAs(t, ValidateUpdate(u), &verr)

	require.True(t, u.SetField("mardi", "8,5"))
	require.True(t, u.SetField("samediSupp", "2"))
	require.True(t, u.SetField("avance", "100"))
	require.True(t, u.SetField("description", "retouches"))
	assert.False(t, u.SetField("dimanche", "4"))
	assert.False(t, u.SetField("lundi", "beaucoup"))
	assert.NoError(t, ValidateUpdate(u))

	r := fullWeek(0)
	desc := u.ApplyTo(&r)
	require.NotNil(t, desc)
	assert.Equal(t, "retouches", *desc)
	assert.True(t, r.Attendance[Tuesday].Regular.Equal(dec(8.5)))
	assert.True(t, r.Attendance[Saturday].Overtime.Equal(dec(2)))
	assert.True(t, r.Avance.Equal(dec(100)))

	require.True(t, u.SetField("jeudi", "-1"))
	err := ValidateUpdate(u)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "jeudi")
}

func TestValidateUpdateFitsHourColumns(t *testing.T) {
	var u RecordUpdate
	require.True(t, u.SetField("lundi", "8.125"))
	require.True(t, u.SetField("mardiSupp", "25"))
	require.True(t, u.SetField("avance", "10.12345"))

	var verr *ValidationError
	require.ErrorAs(t, ValidateUpdate(u), &verr)
	assert.Equal(t, "must have at most 2 decimal places", verr.Fields["lundi"])
	assert.Equal(t, "must be less than or equal to 24", verr.Fields["mardiSupp"])
	assert.Equal(t, "must have at most 4 decimal places", verr.Fields["avance"])

	var ok RecordUpdate
	require.True(t, ok.SetField("lundi", "8,25"))
	require.True(t, ok.SetField("samediSupp", "24"))
	require.True(t, ok.SetField("avance", "10.1234"))
	assert.NoError(t, ValidateUpdate(ok))
}

func TestValidateRecord(t *testing.T) {
	assert.NoError(t, ValidateRecord(fullWeek(10)))

	r := fullWeek(-5)
	r.SalaireHebdomadaire = dec(-1)
	r.Attendance[Friday].Overtime = dec(-2)

	var verr *ValidationError
	require.ErrorAs(t, ValidateRecord(r), &verr)
	assert.Contains(t, verr.Fields, "avance")
	assert.Contains(t, verr.Fields, "salaireHebdomadaire")
	assert.Contains(t, verr.Fields, "vendrediSupp")

	r = fullWeek(0)
	r.SalaireHebdomadaire = dec(570.00001)
	r.Attendance[Monday].Regular = dec(99999)
	require.ErrorAs(t, ValidateRecord(r), &verr)
	assert.Contains(t, verr.Fields, "salaireHebdomadaire")
	assert.Contains(t, verr.Fields, "lundi")
}
