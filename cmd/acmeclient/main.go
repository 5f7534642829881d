// acmeclient is a thin, one-shot command-line front end over the ACME
// protocol engine: profile lookup, account registration, domain
// authorization, and certificate issuance, each triggered by -c/--cmd.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/cpu/acme01client/acme/engine"
	"github.com/cpu/acme01client/acme/keys"
	"github.com/cpu/acme01client/acme/resources"
	"github.com/cpu/acme01client/cmd"
	"github.com/cpu/acme01client/external"
)

const usage = `acmeclient -c <add|csr|info|reg|help> [options]

Commands:
  info   Fetch and print the account profile
  reg    Register a new account (fails unless the server answers 201)
  add    Authorize a domain and request a certificate for it
  csr    Request a certificate for a domain that is already authorized
  help   Print this text

Options:
  -u  ACME directory URL
  -k  Path to the account key JSON (see resources.Account.Save)
  -d  Domain to authorize / certify
  -e  Contact email (registration) or email override (CSR)
  -o  Organization name for the CSR
  -l  RSA key size in bits for generated keys (default 2048)
  -n  Certificate validity in days (default 1)
  -h  Webroot directory the challenge file is written under
  -w  Well-known path fragment (default /.well-known/acme-challenge/)
  -r  Path to the external key/CSR-generation tool (reg also uses it to
      bootstrap the account key itself when -k has no existing file)
  -y  Skip the interactive "press enter to continue" pause
  -v  Verbose request/response tracing
`

func main() {
	cmdName := flag.String("c", "", "Command to run: add, csr, info, reg, help")
	directoryURL := flag.String("u", "", "ACME directory URL")
	accountPath := flag.String("k", "", "Path to the account key JSON")
	domain := flag.String("d", "", "Domain to authorize / certify")
	email := flag.String("e", "", "Contact email or email override")
	organization := flag.String("o", "", "Organization name for the CSR")
	rsaBits := flag.Int("l", 2048, "RSA key size in bits for generated keys")
	daysValid := flag.Int("n", 1, "Certificate validity in days")
	webroot := flag.String("h", "", "Webroot directory the challenge file is written under")
	wellKnown := flag.String("w", "", "Well-known path fragment")
	toolPath := flag.String("r", "", "Path to the external key/CSR-generation tool")
	skipInteraction := flag.Bool("y", false, "Skip the interactive continuation pause")
	verbose := flag.Bool("v", false, "Verbose request/response tracing")
	flag.Parse()

	if *cmdName == "" || *cmdName == "help" {
		fmt.Print(usage)
		return
	}

	account, err := loadOrCreateAccount(*accountPath, *rsaBits, *cmdName == "reg", *toolPath)
	cmd.FailOnError(err, "loading account")

	cfg := engine.Config{
		DirectoryURL:      *directoryURL,
		DaysValid:         *daysValid,
		DefaultRSAKeySize: *rsaBits,
		EmailOverride:     *email,
		Webroot:           *webroot,
		WellKnownPath:     *wellKnown,
		WithInteraction:   !*skipInteraction,
		Interact:          interactPrompt,
		Output:            engine.OutputOptions{Verbose: *verbose},
	}

	e, err := engine.New(cfg, account, nil)
	cmd.FailOnError(err, "building engine")

	switch *cmdName {
	case "info":
		runInfo(e)
	case "reg":
		runReg(e, *email, *accountPath)
	case "add":
		runAdd(e, *toolPath, *domain, *organization, *accountPath)
	case "csr":
		runCSR(e, *toolPath, *domain, *organization)
	default:
		cmd.FailOnError(fmt.Errorf("unknown command %q", *cmdName), "parsing -c")
	}
}

// loadOrCreateAccount restores an existing account from path, or else
// generates a fresh one. When bootstrapping for the reg command with an
// external tool configured, the account key itself is produced by that
// tool (the (rsa_bits, filename) variant of spec.md section 6's external
// tool contract) rather than generated in-process.
func loadOrCreateAccount(path string, bits int, bootstrapViaTool bool, toolPath string) (*resources.Account, error) {
	if path != "" {
		if account, err := resources.RestoreAccount(path); err == nil {
			return account, nil
		}
	}
	if bootstrapViaTool && toolPath != "" {
		return newAccountViaTool(toolPath, bits)
	}
	return resources.NewAccount(bits)
}

// newAccountViaTool shells out to the external account-key-generation
// tool to produce a PEM-encoded RSA key, then loads it.
func newAccountViaTool(toolPath string, bits int) (*resources.Account, error) {
	const keyFile = "account-key.pem"
	gen := external.ExecAccountKeyGenerator{Path: toolPath}
	if err := gen.Generate(external.AccountKeyRequest{RSABits: bits, Filename: keyFile}); err != nil {
		return nil, err
	}
	pemBytes, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	key, err := keys.SignerFromPEM(pemBytes)
	if err != nil {
		return nil, err
	}
	return &resources.Account{PrivateKey: key}, nil
}

func interactPrompt() error {
	fmt.Println("Challenge file published. Press enter once it is reachable over HTTP...")
	_, err := bufio.NewReader(os.Stdin).ReadString('\n')
	return err
}

func runInfo(e *engine.Engine) {
	profile, err := e.GetProfile()
	cmd.FailOnError(err, "get_profile")
	fmt.Printf("Account %s: contact=%v\n", profile.RegLink, profile.Body.Contact)
}

func runReg(e *engine.Engine, email, accountPath string) {
	regLink, err := e.CreateAccount(email)
	cmd.FailOnError(err, "create_account")
	fmt.Printf("Registered account %s\n", regLink)

	if tosLink, ok := e.TOSLink(); ok {
		err := e.AgreeTOS(tosLink)
		cmd.FailOnError(err, "agree_tos")
		fmt.Printf("Agreed to terms of service at %s\n", tosLink)
	}

	if accountPath != "" {
		cmd.FailOnError(e.Account().Save(accountPath), "saving account")
	}
}

func runAdd(e *engine.Engine, toolPath, domain, organization, accountPath string) {
	if domain == "" {
		cmd.FailOnError(fmt.Errorf("-d is required for add"), "parsing flags")
	}

	result, err := e.AuthorizeDomain(domain)
	cmd.FailOnError(err, "authorize_domain")
	if !result.Valid {
		cmd.FailOnError(fmt.Errorf("authorization for %s did not become valid", domain), "authorize_domain")
	}
	fmt.Printf("Domain %s authorized\n", domain)

	runCSR(e, toolPath, domain, organization)

	if accountPath != "" {
		cmd.FailOnError(e.Account().Save(accountPath), "saving account")
	}
}

// runCSR requests a certificate for a domain that is already authorized.
// No command-line flag carries a country code, so country is passed to the
// external tool as an empty -c value.
func runCSR(e *engine.Engine, toolPath, domain, organization string) {
	if domain == "" {
		cmd.FailOnError(fmt.Errorf("-d is required for csr"), "parsing flags")
	}
	if toolPath == "" {
		cmd.FailOnError(fmt.Errorf("-r is required for csr"), "parsing flags")
	}

	gen := external.ExecCSRGenerator{Path: toolPath}
	cert, err := e.RequestCertificate(gen, domain, organization, "")
	cmd.FailOnError(err, "request_certificate")
	fmt.Printf("Issued certificate for %s (%d bytes)\n", domain, len(cert.DER))
}
