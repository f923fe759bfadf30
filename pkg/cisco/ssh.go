package cisco

// Management access defaults baked into every generated device. Lab
// conventions, not production credentials.
const (
	DefaultDomainName = "cisco.com"
	DefaultUsername   = "user"
	DefaultPassword   = "cisco"
	DefaultSecret     = "cisco"
)

// sshPreamble emits the SSH management block shared by all roles: domain
// name for RSA key generation, the key itself, vty lines restricted to SSH,
// and a local login user. Switch-cores answer an extra "yes" prompt when an
// old key is replaced.
func sshPreamble(confirmReplace bool) []string {
	cmds := []string{
		"ip domain-name " + DefaultDomainName,
		"crypto key generate rsa",
	}
	if confirmReplace {
		cmds = append(cmds, "yes")
	}
	cmds = append(cmds,
		"512",
		"line vty 0 5",
		"transport input ssh",
		"login local",
		"exit",
		"username "+DefaultUsername+" password "+DefaultPassword,
		"enable secret "+DefaultSecret,
	)
	return cmds
}
