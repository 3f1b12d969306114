package action

import (
	"fmt"
	"strings"
)

const (
	GroupCalls     = "Call Center"
	GroupKnowledge = "Knowledge Base"
	GroupVoice     = "Voice"
	GroupMarketing = "Marketing"
	GroupSales     = "Sales"
	GroupSupport   = "Support"
	GroupSystem    = "System"
	GroupTestData  = "Test Data"
)

// Groups lists action groups in dashboard order.
var Groups = []string{
	GroupCalls, GroupKnowledge, GroupVoice, GroupMarketing,
	GroupSales, GroupSupport, GroupSystem, GroupTestData,
}

type Catalog struct {
	list []Action
	byID map[string]int
}

func NewCatalog(actions []Action) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(actions))}
	for _, a := range actions {
		if a.ID == "" || !strings.HasPrefix(a.Endpoint, "/") {
			return nil, fmt.Errorf("action %q: id and absolute endpoint required", a.ID)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate action id %q", a.ID)
		}
		c.byID[a.ID] = len(c.list)
		c.list = append(c.list, a)
	}
	return c, nil
}

func (c *Catalog) Lookup(id string) (Action, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Action{}, false
	}
	return c.list[i], true
}

func (c *Catalog) All() []Action {
	out := make([]Action, len(c.list))
	copy(out, c.list)
	return out
}

// ByGroup returns the actions of one group in catalog order.
func (c *Catalog) ByGroup(group string) []Action {
	var out []Action
	for _, a := range c.list {
		if a.Group == group {
			out = append(out, a)
		}
	}
	return out
}

// DefaultCatalog is the stock dashboard action set.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultActions())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultActions() []Action {
	return []Action{
		// Call center
		{ID: "calls-start-campaign", Label: "Start Call Campaign", Group: GroupCalls, Endpoint: "/api/calls/campaign/start",
			Fields: []Field{
				{Name: "campaignName", Label: "Campaign name", Required: true},
				{Name: "listId", Label: "Lead list", Required: true},
				{Name: "personaId", Label: "Voice persona"},
			}},
		{ID: "calls-pause-all", Label: "Pause All Calls", Group: GroupCalls, Endpoint: "/api/calls/pause", Guard: GuardConfirm},
		{ID: "calls-resume-all", Label: "Resume Calls", Group: GroupCalls, Endpoint: "/api/calls/resume"},
		{ID: "calls-test-call", Label: "Place Test Call", Group: GroupCalls, Endpoint: "/api/calls/test",
			Fields: []Field{{Name: "phone", Label: "Phone number", Required: true}}},
		{ID: "calls-export-transcripts", Label: "Export Transcripts", Group: GroupCalls, Endpoint: "/api/calls/transcripts/export"},
		{ID: "calls-sync-outcomes", Label: "Sync Call Outcomes", Group: GroupCalls, Endpoint: "/api/calls/outcomes/sync"},

		// Knowledge base
		{ID: "knowledge-upload", Label: "Upload Knowledge", Group: GroupKnowledge, Endpoint: "/api/knowledge/upload",
			Success: "Knowledge uploaded",
			Fields: []Field{
				{Name: "title", Label: "Title", Required: true},
				{Name: "content", Label: "Content", Required: true, Multiline: true},
			}},
		{ID: "knowledge-upload-url", Label: "Import Page", Group: GroupKnowledge, Endpoint: "/api/knowledge/upload",
			Success: "Page imported into knowledge base",
			Fields:  []Field{{Name: "url", Label: "Page URL", Required: true, Placeholder: "https://"}}},
		{ID: "knowledge-reindex", Label: "Reindex Knowledge", Group: GroupKnowledge, Endpoint: "/api/knowledge/reindex"},
		{ID: "knowledge-sync-drive", Label: "Sync Shared Drive", Group: GroupKnowledge, Endpoint: "/api/knowledge/sync"},
		{ID: "knowledge-test-query", Label: "Test Knowledge Query", Group: GroupKnowledge, Endpoint: "/api/knowledge/query",
			Fields: []Field{{Name: "question", Label: "Question", Required: true}}},

		// Voice
		{ID: "voice-generate", Label: "Generate Voice", Group: GroupVoice, Endpoint: "/api/voice/generate",
			Success: "Voice sample generated",
			Fields: []Field{
				{Name: "text", Label: "Script", Required: true, Multiline: true},
				{Name: "personaId", Label: "Persona"},
			}},
		{ID: "voice-clone", Label: "Clone Voice", Group: GroupVoice, Endpoint: "/api/voice/clone",
			Fields: []Field{
				{Name: "name", Label: "Persona name", Required: true},
				{Name: "sampleUrl", Label: "Sample URL", Required: true},
			}},
		{ID: "voice-refresh-personas", Label: "Refresh Personas", Group: GroupVoice, Endpoint: "/api/voice/personas/refresh"},
		{ID: "voice-set-default", Label: "Set Default Persona", Group: GroupVoice, Endpoint: "/api/voice/personas/default",
			Fields: []Field{{Name: "personaId", Label: "Persona", Required: true}}},

		// Marketing
		{ID: "marketing-sync-hubspot", Label: "Sync HubSpot", Group: GroupMarketing, Endpoint: "/api/marketing/hubspot/sync"},
		{ID: "marketing-sync-mailchimp", Label: "Sync Mailchimp", Group: GroupMarketing, Endpoint: "/api/marketing/mailchimp/sync"},
		{ID: "marketing-launch-sequence", Label: "Launch Email Sequence", Group: GroupMarketing, Endpoint: "/api/marketing/sequence/launch",
			Fields: []Field{
				{Name: "sequenceName", Label: "Sequence", Required: true},
				{Name: "segment", Label: "Segment"},
			}},
		{ID: "marketing-enrich-leads", Label: "Enrich Leads", Group: GroupMarketing, Endpoint: "/api/leads/enrich"},
		{ID: "marketing-dedupe-leads", Label: "Deduplicate Leads", Group: GroupMarketing, Endpoint: "/api/leads/dedupe", Guard: GuardConfirm},

		// Sales
		{ID: "sales-order-create", Label: "Create Sales Order", Group: GroupSales, Endpoint: "/api/sales-order/create",
			Success: "Sales order created",
			Fields: []Field{
				{Name: "customer", Label: "Customer", Required: true},
				{Name: "product", Label: "Product", Required: true},
				{Name: "quantity", Label: "Quantity", Required: true},
				{Name: "notes", Label: "Notes", Multiline: true},
			}},
		{ID: "sales-quote-send", Label: "Send Quote", Group: GroupSales, Endpoint: "/api/sales/quote",
			Fields: []Field{
				{Name: "customer", Label: "Customer", Required: true},
				{Name: "amount", Label: "Amount", Required: true},
			}},
		{ID: "sales-sync-crm", Label: "Sync CRM Deals", Group: GroupSales, Endpoint: "/api/sales/crm/sync"},
		{ID: "sales-forecast", Label: "Rebuild Forecast", Group: GroupSales, Endpoint: "/api/sales/forecast"},
		{ID: "sales-followups", Label: "Queue Follow-ups", Group: GroupSales, Endpoint: "/api/sales/followups"},

		// Support
		{ID: "support-ticket", Label: "Open Support Ticket", Group: GroupSupport, Endpoint: "/api/support/ticket",
			Success: "Support ticket created",
			Fields: []Field{
				{Name: "subject", Label: "Subject", Required: true},
				{Name: "description", Label: "Description", Required: true, Multiline: true},
				{Name: "priority", Label: "Priority", Placeholder: "normal"},
			}},
		{ID: "support-escalate", Label: "Escalate Ticket", Group: GroupSupport, Endpoint: "/api/support/escalate",
			Fields: []Field{{Name: "ticketId", Label: "Ticket ID", Required: true}}},
		{ID: "support-auto-triage", Label: "Auto-triage Inbox", Group: GroupSupport, Endpoint: "/api/support/triage"},
		{ID: "support-csat-survey", Label: "Send CSAT Survey", Group: GroupSupport, Endpoint: "/api/support/csat"},

		// System
		{ID: "system-health-check", Label: "Run Health Check", Group: GroupSystem, Endpoint: "/api/system/health-check"},
		{ID: "system-restart-workers", Label: "Restart Workers", Group: GroupSystem, Endpoint: "/api/system/workers/restart", Guard: GuardConfirm},
		{ID: "system-clear-cache", Label: "Clear Cache", Group: GroupSystem, Endpoint: "/api/system/cache/clear"},
		{ID: "system-rotate-logs", Label: "Rotate Logs", Group: GroupSystem, Endpoint: "/api/system/logs/rotate"},
		{ID: "system-backup", Label: "Backup Now", Group: GroupSystem, Endpoint: "/api/system/backup"},
		{ID: "audit-run", Label: "Run Audit", Group: GroupSystem, Endpoint: "/api/audit/run"},
		{ID: "emergency-stop", Label: "Emergency Stop", Group: GroupSystem, Endpoint: "/api/system/emergency-stop",
			Guard: GuardConfirm, Success: "All automations stopped"},

		// Test data
		{ID: "test-seed-leads", Label: "Seed Test Leads", Group: GroupTestData, Endpoint: "/api/test-data/seed"},
		{ID: "test-simulate-call", Label: "Simulate Inbound Call", Group: GroupTestData, Endpoint: "/api/test-data/simulate-call"},
		{ID: "clear-test-data", Label: "Clear Test Data", Group: GroupTestData, Endpoint: "/api/test-data/clear",
			Guard: GuardConfirm, Success: "Test data cleared"},
		{ID: "purge-knowledge-test-data", Label: "Purge Knowledge Test Data", Group: GroupTestData, Endpoint: "/api/knowledge/purge-test-data",
			Guard: GuardTypedDelete, RequireLive: true, Success: "Knowledge test data purged"},
	}
}
