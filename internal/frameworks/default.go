package frameworks

import "sentinel/internal/domain"

// Default returns the built-in compliance catalog
func Default() *domain.FrameworkDocument {
	return &domain.FrameworkDocument{Frameworks: []domain.Framework{
		{
			ID:          "nist-csf",
			Name:        "NIST Cybersecurity Framework",
			Version:     "2.0",
			Description: "Risk-based guidance for managing cybersecurity outcomes",
			Controls: []domain.Control{
				{ID: "ID.AM-01", Title: "Inventories of hardware managed by the organization are maintained"},
				{ID: "ID.RA-01", Title: "Vulnerabilities in assets are identified, validated, and recorded"},
				{ID: "PR.AA-01", Title: "Identities and credentials for authorized users are managed"},
				{ID: "PR.PS-02", Title: "Software is maintained, replaced, and removed commensurate with risk"},
				{ID: "DE.CM-01", Title: "Networks and network services are monitored"},
			},
		},
		{
			ID:          "cis-v8",
			Name:        "CIS Critical Security Controls",
			Version:     "8",
			Description: "Prioritized safeguards against the most pervasive attacks",
			Controls: []domain.Control{
				{ID: "1", Title: "Inventory and Control of Enterprise Assets"},
				{ID: "4", Title: "Secure Configuration of Enterprise Assets and Software"},
				{ID: "7", Title: "Continuous Vulnerability Management"},
				{ID: "12", Title: "Network Infrastructure Management"},
				{ID: "13", Title: "Network Monitoring and Defense"},
			},
		},
		{
			ID:          "iso-27001",
			Name:        "ISO/IEC 27001",
			Version:     "2022",
			Description: "Information security management systems requirements",
			Controls: []domain.Control{
				{ID: "A.5.9", Title: "Inventory of information and other associated assets"},
				{ID: "A.8.8", Title: "Management of technical vulnerabilities"},
				{ID: "A.8.20", Title: "Networks security"},
				{ID: "A.8.22", Title: "Segregation of networks"},
			},
		},
		{
			ID:          "pci-dss",
			Name:        "PCI DSS",
			Version:     "4.0",
			Description: "Security standard for entities that handle payment card data",
			Controls: []domain.Control{
				{ID: "1.2", Title: "Network security controls are configured and maintained"},
				{ID: "6.3", Title: "Security vulnerabilities are identified and addressed"},
				{ID: "11.3", Title: "External and internal vulnerabilities are regularly identified"},
			},
		},
		{
			ID:          "soc2",
			Name:        "SOC 2",
			Version:     "2017",
			Description: "Trust services criteria for security, availability and confidentiality",
			Controls: []domain.Control{
				{ID: "CC6.1", Title: "Logical access security over protected information assets"},
				{ID: "CC7.1", Title: "Detection of configuration changes and new vulnerabilities"},
				{ID: "CC7.2", Title: "Monitoring of system components for anomalies"},
			},
		},
	}}
}
