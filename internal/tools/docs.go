package tools

import (
	"context"
	"fmt"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/service"
)

const (
	ReadITDocsName      = "ReadITDocs"
	ReadFinanceDocsName = "ReadFinanceDocs"
)

const docsLimit = 3

// ReadITDocs searches internal IT documentation
func ReadITDocs(src service.DocSource) Tool {
	return docsTool(ReadITDocsName, models.CategoryIT,
		"Search internal IT documentation (VPN, laptops, email, wifi, software). Input is the user's question.", src)
}

// ReadFinanceDocs searches internal Finance documentation
func ReadFinanceDocs(src service.DocSource) Tool {
	return docsTool(ReadFinanceDocsName, models.CategoryFinance,
		"Search internal Finance documentation (payroll, invoices, reimbursement, budgets). Input is the user's question.", src)
}

func docsTool(name string, category models.Category, description string, src service.DocSource) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Invoke: func(ctx context.Context, input string) (string, error) {
			docs, err := src.Search(ctx, category, input, docsLimit)
			if err != nil {
				return "", fmt.Errorf("%s search: %w", category, err)
			}
			return service.FormatDocs(category, input, docs), nil
		},
	}
}
