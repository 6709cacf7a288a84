package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Field is a position in the fixed field catalog of a time-tracking extract.
type Field int

// Field catalog in document column order.
const (
	FieldRecordID Field = iota
	FieldPersonnelNumber
	FieldEmployeeName
	FieldOrganizationalUnit
	FieldCostCenter
	FieldCostCenterName
	FieldCompanyCode
	FieldControllingArea
	FieldWorkDate
	FieldStartTime
	FieldEndTime
	FieldDuration
	FieldUnitOfMeasure
	FieldAttendanceType
	FieldActivityType
	FieldActivityTypeName
	FieldProject
	FieldProjectName
	FieldWBSElement
	FieldWBSDescription
	FieldNetwork
	FieldOperation
	FieldOrder
	FieldOrderDescription
	FieldReceiverCostCenter
	FieldSenderCostCenter
	FieldCustomer
	FieldCustomerName
	FieldSalesOrder
	FieldSalesOrderItem
	FieldServiceNumber
	FieldPosition
	FieldWageType
	FieldOvertimeFlag
	FieldBillable
	FieldBillingStatus
	FieldApprovalStatus
	FieldApprovedBy
	FieldApprovalDate
	FieldEnteredBy
	FieldEnteredOn
	FieldChangedBy
	FieldChangedOn
	FieldDocumentNumber
	FieldFiscalYear
	FieldPeriod
	FieldWeek
	FieldShortText
	FieldLongText
	FieldLocation
	FieldCountry
	FieldRegion
	FieldContractType
	FieldWorkSchedule
	FieldEmployeeGroup
	FieldEmployeeSubgroup
	FieldExternalReference
	FieldRemarks

	fieldCount
)

const (
	// FieldCount is the number of named fields in the catalog.
	FieldCount = int(fieldCount)
	// MinColumnCount is the minimum number of fields an accepted data row carries.
	MinColumnCount = 50
)

var fieldColumns = [FieldCount]string{
	"record_id",
	"personnel_number",
	"employee_name",
	"organizational_unit",
	"cost_center",
	"cost_center_name",
	"company_code",
	"controlling_area",
	"work_date",
	"start_time",
	"end_time",
	"duration",
	"unit_of_measure",
	"attendance_type",
	"activity_type",
	"activity_type_name",
	"project",
	"project_name",
	"wbs_element",
	"wbs_description",
	"network",
	"operation",
	"order",
	"order_description",
	"receiver_cost_center",
	"sender_cost_center",
	"customer",
	"customer_name",
	"sales_order",
	"sales_order_item",
	"service_number",
	"position",
	"wage_type",
	"overtime_flag",
	"billable",
	"billing_status",
	"approval_status",
	"approved_by",
	"approval_date",
	"entered_by",
	"entered_on",
	"changed_by",
	"changed_on",
	"document_number",
	"fiscal_year",
	"period",
	"week",
	"short_text",
	"long_text",
	"location",
	"country",
	"region",
	"contract_type",
	"work_schedule",
	"employee_group",
	"employee_subgroup",
	"external_reference",
	"remarks",
}

// Fields returns the catalog in column order.
func Fields() []Field {
	fields := make([]Field, FieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Valid reports whether f is a catalog position.
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Column returns the snake_case column name of the field.
func (f Field) Column() string {
	if !f.Valid() {
		return fmt.Sprintf("field_%d", int(f))
	}
	return fieldColumns[f]
}

// String returns the column name of the field.
func (f Field) String() string {
	return f.Column()
}

// RawRow is one accepted data row of an extract. A RawRow is immutable:
// its values are copied at construction and never handed out by reference.
type RawRow struct {
	values []string
}

// NewRawRow validates values against the field catalog and builds a row.
// Rows with fewer than MinColumnCount values are rejected with ErrTooFewColumns.
// Values beyond the catalog are kept and reachable through Values.
func NewRawRow(values []string) (RawRow, error) {
	if len(values) < MinColumnCount {
		return RawRow{}, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewColumns, len(values), MinColumnCount)
	}
	copied := make([]string, len(values))
	copy(copied, values)
	return RawRow{values: copied}, nil
}

// Len returns the number of values the row was built from.
func (r RawRow) Len() int {
	return len(r.values)
}

// Value returns the value of f, or an empty string when the row is shorter
// than the catalog.
func (r RawRow) Value(f Field) string {
	if f < 0 || int(f) >= len(r.values) {
		return ""
	}
	return r.values[f]
}

// Values returns a copy of all values, including any beyond the catalog.
func (r RawRow) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// RecordID returns the record identifier.
func (r RawRow) RecordID() string { return r.Value(FieldRecordID) }

// PersonnelNumber returns the employee's personnel number.
func (r RawRow) PersonnelNumber() string { return r.Value(FieldPersonnelNumber) }

// EmployeeName returns the employee's display name.
func (r RawRow) EmployeeName() string { return r.Value(FieldEmployeeName) }

// CostCenter returns the sender cost center of the booking.
func (r RawRow) CostCenter() string { return r.Value(FieldCostCenter) }

// ActivityType returns the activity type code.
func (r RawRow) ActivityType() string { return r.Value(FieldActivityType) }

// ActivityTypeName returns the activity type description.
func (r RawRow) ActivityTypeName() string { return r.Value(FieldActivityTypeName) }

// Project returns the project code.
func (r RawRow) Project() string { return r.Value(FieldProject) }

// ProjectName returns the project description.
func (r RawRow) ProjectName() string { return r.Value(FieldProjectName) }

// Customer returns the customer number.
func (r RawRow) Customer() string { return r.Value(FieldCustomer) }

// EmployeeGroup returns the employee group, the category weekly norms are keyed by.
func (r RawRow) EmployeeGroup() string { return r.Value(FieldEmployeeGroup) }

// ApprovalStatus returns the approval status of the booking.
func (r RawRow) ApprovalStatus() string { return r.Value(FieldApprovalStatus) }

// Duration returns the raw duration text, comma decimal.
func (r RawRow) Duration() string { return r.Value(FieldDuration) }

// Hours returns the parsed duration. Unparseable text yields zero.
func (r RawRow) Hours() decimal.Decimal { return ParseMeasure(r.Duration()) }

// WorkDate parses the work date. ok is false when the text is not a valid date.
func (r RawRow) WorkDate() (t time.Time, ok bool) { return ParseDate(r.Value(FieldWorkDate)) }

// DimensionValue returns the normalized value of d for this row.
func (r RawRow) DimensionValue(d Dimension) string {
	return Normalize(r.Value(d.Field()))
}

// Key returns the aggregation key of the row.
func (r RawRow) Key() AggregationKey {
	var key AggregationKey
	for _, d := range Dimensions() {
		key[d] = r.DimensionValue(d)
	}
	return key
}
