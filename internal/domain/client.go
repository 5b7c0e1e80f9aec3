package domain

// ClientInfo describes the customer a report is generated for.
type ClientInfo struct {
	ID                TicketID `json:"id"`
	Name              string   `json:"name"`
	FetchedAsType     string   `json:"fetched_as_type,omitempty"`
	ReportPeriodStart string   `json:"report_period_start,omitempty"`
	ReportPeriodEnd   string   `json:"report_period_end,omitempty"`
	RetrievalDate     string   `json:"retrieval_date,omitempty"`
	ClientType        *string  `json:"client_type,omitempty"`
	CompanyMainNumber *string  `json:"company_main_number,omitempty"`
	CompanyStartDate  *string  `json:"company_start_date,omitempty"`
	Domains           []string `json:"domains,omitempty"`
	CompanyHeadName   *string  `json:"company_head_name,omitempty"`
	PrimeUserName     *string  `json:"prime_user_name,omitempty"`
}

// DisplayName falls back to a generated name when the helpdesk returned none.
func (c ClientInfo) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.ID != "" {
		return "Client_" + string(c.ID)
	}
	return "Unknown client"
}
