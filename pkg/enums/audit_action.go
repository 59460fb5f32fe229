package enums

// AuditAction names a recorded state change or admin action.
type AuditAction string

const (
	AuditKitCreated            AuditAction = "kit.created"
	AuditKitGenerated          AuditAction = "kit.generated"
	AuditKitGenerationFailed   AuditAction = "kit.generation_failed"
	AuditKitSectionRegenerated AuditAction = "kit.section_regenerated"
	AuditKitSectionEdited      AuditAction = "kit.section_edited"
	AuditKitApproved           AuditAction = "kit.approved"

	AuditOrderCreated       AuditAction = "order.created"
	AuditOrderPaid          AuditAction = "order.paid"
	AuditOrderQAPending     AuditAction = "order.qa_pending"
	AuditOrderPaymentFailed AuditAction = "order.payment_failed"
	AuditOrderMarkedPaid    AuditAction = "order.marked_paid"
	AuditOrderReady         AuditAction = "order.ready"
	AuditOrderDelivered     AuditAction = "order.delivered"
	AuditOrderNoteAdded     AuditAction = "order.note_added"
	AuditOrderEmailResent   AuditAction = "order.email_resent"

	AuditExportRequested AuditAction = "export.requested"
	AuditExportCompleted AuditAction = "export.completed"
	AuditExportFailed    AuditAction = "export.failed"
	AuditExportTimedOut  AuditAction = "export.timed_out"
)

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}
