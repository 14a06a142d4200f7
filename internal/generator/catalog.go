package generator

import "sentinel/internal/domain"

// ServiceCatalog is the fixed set of services a simulated host can expose.
// Ports are unique across the catalog.
var ServiceCatalog = []domain.Service{
	{Port: 21, Name: "ftp", Version: "vsftpd 3.0.3", State: "open"},
	{Port: 22, Name: "ssh", Version: "OpenSSH 8.9p1", State: "open"},
	{Port: 23, Name: "telnet", Version: "BusyBox telnetd", State: "open"},
	{Port: 25, Name: "smtp", Version: "Postfix 3.6.4", State: "open"},
	{Port: 53, Name: "dns", Version: "dnsmasq 2.86", State: "open"},
	{Port: 80, Name: "http", Version: "nginx 1.18.0", State: "open"},
	{Port: 161, Name: "snmp", Version: "net-snmp 5.9", State: "open"},
	{Port: 443, Name: "https", Version: "Apache httpd 2.4.49", State: "open"},
	{Port: 445, Name: "smb", Version: "Samba 4.15.13", State: "open"},
	{Port: 631, Name: "ipp", Version: "CUPS 2.4", State: "open"},
	{Port: 1883, Name: "mqtt", Version: "Mosquitto 2.0.15", State: "open"},
	{Port: 3306, Name: "mysql", Version: "MySQL 8.0.32", State: "open"},
	{Port: 3389, Name: "rdp", Version: "Microsoft Terminal Services", State: "open"},
	{Port: 5432, Name: "postgresql", Version: "PostgreSQL 14.7", State: "open"},
	{Port: 6379, Name: "redis", Version: "Redis 6.2.6", State: "open"},
	{Port: 8080, Name: "http-proxy", Version: "Apache Tomcat 9.0.56", State: "open"},
	{Port: 9100, Name: "jetdirect", Version: "HP JetDirect", State: "open"},
}

// VulnerabilityCatalog is the fixed set of findings a simulated host can carry.
// Identifiers are unique across the catalog.
var VulnerabilityCatalog = []domain.Vulnerability{
	{
		ID:          "CVE-2021-44228",
		Name:        "Log4Shell",
		Severity:    domain.SeverityCritical,
		CVSS:        10.0,
		Description: "Remote code execution in Apache Log4j2 JNDI lookups",
		Remediation: "Upgrade Log4j to 2.17.1 or later",
	},
	{
		ID:          "CVE-2021-41773",
		Name:        "Apache Path Traversal",
		Severity:    domain.SeverityHigh,
		CVSS:        7.5,
		Description: "Path traversal and file disclosure in Apache HTTP Server 2.4.49",
		Remediation: "Upgrade Apache HTTP Server to 2.4.51",
	},
	{
		ID:          "CVE-2017-0144",
		Name:        "EternalBlue",
		Severity:    domain.SeverityCritical,
		CVSS:        9.8,
		Description: "SMBv1 remote code execution",
		Remediation: "Apply MS17-010 and disable SMBv1",
	},
	{
		ID:          "CVE-2019-0708",
		Name:        "BlueKeep",
		Severity:    domain.SeverityCritical,
		CVSS:        9.8,
		Description: "Pre-authentication RDP remote code execution",
		Remediation: "Apply vendor patch and enable Network Level Authentication",
	},
	{
		ID:          "CVE-2022-3602",
		Name:        "OpenSSL X.509 Buffer Overflow",
		Severity:    domain.SeverityHigh,
		CVSS:        7.5,
		Description: "Buffer overrun in X.509 certificate name constraint checking",
		Remediation: "Upgrade OpenSSL to 3.0.7",
	},
	{
		ID:          "CVE-2021-23017",
		Name:        "nginx Resolver Off-by-One",
		Severity:    domain.SeverityHigh,
		CVSS:        7.7,
		Description: "1-byte memory overwrite in the nginx DNS resolver",
		Remediation: "Upgrade nginx to 1.21.0 or later",
	},
	{
		ID:          "SEC-WEAK-SSH",
		Name:        "Weak SSH Ciphers",
		Severity:    domain.SeverityMedium,
		CVSS:        5.3,
		Description: "SSH server accepts CBC-mode ciphers and SHA-1 MACs",
		Remediation: "Restrict Ciphers and MACs in sshd_config",
	},
	{
		ID:          "SEC-DEFAULT-CREDS",
		Name:        "Default Credentials",
		Severity:    domain.SeverityHigh,
		CVSS:        8.8,
		Description: "Management interface accepts vendor default credentials",
		Remediation: "Change default passwords and restrict management access",
	},
	{
		ID:          "SEC-TELNET-ENABLED",
		Name:        "Telnet Enabled",
		Severity:    domain.SeverityMedium,
		CVSS:        6.5,
		Description: "Cleartext Telnet service is reachable",
		Remediation: "Disable Telnet and use SSH",
	},
	{
		ID:          "SEC-SNMP-PUBLIC",
		Name:        "SNMP Public Community",
		Severity:    domain.SeverityLow,
		CVSS:        3.7,
		Description: "SNMP responds to the 'public' community string",
		Remediation: "Use SNMPv3 or change community strings",
	},
}

// OSCatalog lists operating system labels. Draws are independent of
// device type, so a printer may report a desktop OS.
var OSCatalog = []string{
	"Ubuntu 22.04 LTS",
	"Debian 12",
	"CentOS 7",
	"Windows Server 2019",
	"Windows 11",
	"macOS 14",
	"Cisco IOS 15.2",
	"FortiOS 7.2",
	"RouterOS 7.11",
	"Android 14",
	"iOS 17",
	"Embedded Linux",
}
