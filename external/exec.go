package external

import (
	"fmt"
	"os/exec"
	"strconv"
)

// ExecCSRGenerator shells out to an external binary to produce the
// per-domain key and CSR, per spec.md section 6's external tool contract.
// The binary is invoked as:
//
//	<path> -b <rsa_bits> -c <country> -o <organization> -n <common_name> -e <email>
type ExecCSRGenerator struct {
	Path string
}

func (g ExecCSRGenerator) Generate(req CSRRequest) error {
	cmd := exec.Command(g.Path,
		"-b", strconv.Itoa(req.RSABits),
		"-c", req.Country,
		"-o", req.Organization,
		"-n", req.CommonName,
		"-e", req.Email,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("external: %s: %w: %s", g.Path, err, out)
	}
	return nil
}

// ExecAccountKeyGenerator shells out to an external binary to produce a
// standalone RSA account key, invoked as:
//
//	<path> -b <rsa_bits> -f <filename>
type ExecAccountKeyGenerator struct {
	Path string
}

func (g ExecAccountKeyGenerator) Generate(req AccountKeyRequest) error {
	cmd := exec.Command(g.Path,
		"-b", strconv.Itoa(req.RSABits),
		"-f", req.Filename,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("external: %s: %w: %s", g.Path, err, out)
	}
	return nil
}
