package agent

import (
	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/tools"
)

const itSystemPrompt = `You are the IT helpdesk agent.

You answer employee questions about VPN access, laptops, email, wifi and software.

RULES:
1. Always call ReadITDocs first with the user's question
2. Use WebSearch only when the internal documentation does not cover the question
3. Give short, numbered troubleshooting steps
4. If you cannot solve the problem, say which team to contact and what details to include`

const financeSystemPrompt = `You are the Finance helpdesk agent.

You answer employee questions about payroll, invoices, reimbursement and budgets.

RULES:
1. Always call ReadFinanceDocs first with the user's question
2. Use WebSearch only for general, non-company information
3. Never invent amounts, deadlines or policy numbers that the documentation does not state
4. Keep the answer brief and list any forms or approvals the employee needs`

// DefaultSpecialists binds the IT and Finance agents to their tool sets from
// the registry. The Runner is left nil so the router's default is used.
func DefaultSpecialists(reg *tools.Registry) ([]Specialist, error) {
	itTools, err := reg.Select(tools.ReadITDocsName, tools.WebSearchName)
	if err != nil {
		return nil, err
	}
	financeTools, err := reg.Select(tools.ReadFinanceDocsName, tools.WebSearchName)
	if err != nil {
		return nil, err
	}
	return []Specialist{
		{Category: models.CategoryIT, SystemPrompt: itSystemPrompt, Tools: itTools},
		{Category: models.CategoryFinance, SystemPrompt: financeSystemPrompt, Tools: financeTools},
	}, nil
}
