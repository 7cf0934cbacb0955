// Command jwtauth issues, checks and inspects HS256 tokens.
//
//	jwtauth generate -secret S -claim sub=user-42 -claim role=admin -exp 1h
//	jwtauth validate -secret S TOKEN
//	jwtauth payload TOKEN
//	jwtauth inspect -secret S TOKEN
//
// The secret may be given in JWTAUTH_SECRET instead of -secret, and a .env
// file in the working directory is loaded first.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cybergodev/jwtauth"
)

const usage = `usage: jwtauth <command> [flags] [token]

commands:
  generate   sign a new token from -claim key=value pairs
  validate   check structure, algorithm and signature
  payload    print the decoded payload without checking it
  inspect    print header, payload, validity and remaining lifetime
`

var errUsage = errors.New("invalid usage")

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "jwtauth: %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "jwtauth: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	p, err := jwtauth.New(jwtauth.WithConfig(cfg.Processor), jwtauth.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "jwtauth: %v\n", err)
		return 1
	}

	c := &cli{processor: p, logger: logger, secret: cfg.Secret, stdout: stdout, stderr: stderr}

	command, rest := args[0], args[1:]
	switch command {
	case "generate":
		err = c.generate(rest)
	case "validate":
		err = c.validate(rest)
	case "payload":
		err = c.payload(rest)
	case "inspect":
		err = c.inspect(rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "jwtauth: unknown command %q\n\n%s", command, usage)
		return 2
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(stderr, "jwtauth: %v\n", err)
		return 1
	}
}

type cli struct {
	processor *jwtauth.Processor
	logger    *zap.Logger
	secret    string
	stdout    io.Writer
	stderr    io.Writer
}

// flagSet returns a FlagSet with the shared -secret flag. The secret is
// read through the returned function so JWTAUTH_SECRET never shows up in
// usage output.
func (c *cli) flagSet(name string) (*flag.FlagSet, func() string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	secret := fs.String("secret", "", "shared secret (default $JWTAUTH_SECRET)")
	return fs, func() string {
		if *secret != "" {
			return *secret
		}
		return c.secret
	}
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

// tokenArg returns the single positional argument left after flag parsing.
func tokenArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fmt.Fprintf(fs.Output(), "%s: expected exactly one token argument\n", fs.Name())
		return "", errUsage
	}
	return strings.TrimSpace(fs.Arg(0)), nil
}

func (c *cli) generate(args []string) error {
	fs, secret := c.flagSet("generate")
	claims := claimFlags{}
	fs.Var(claims, "claim", "claim as key=value; JSON values are decoded (repeatable)")
	ttl := fs.Duration("exp", 0, "set exp this far in the future")
	issuedAt := fs.Bool("iat", false, "set iat to the current time")
	jti := fs.Bool("jti", false, "set jti to a random UUID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(c.stderr, "generate: unexpected argument %q\n", fs.Arg(0))
		return errUsage
	}

	now := time.Now()
	if *ttl != 0 {
		claims[jwtauth.ClaimExpiration] = jwtauth.NumericDate(now.Add(*ttl))
	}
	if *issuedAt {
		claims[jwtauth.ClaimIssuedAt] = jwtauth.NumericDate(now)
	}
	if *jti {
		claims[jwtauth.ClaimJwtID] = uuid.NewString()
	}

	token, err := c.processor.Generate(claims, secret())
	if err != nil {
		return err
	}
	c.logger.Info("token generated", zap.Int("claims", len(claims)))
	fmt.Fprintln(c.stdout, token.Raw())
	return nil
}

func (c *cli) validate(args []string) error {
	fs, secret := c.flagSet("validate")
	checkTime := fs.Bool("time", false, "also check exp and nbf when present")
	audience := fs.String("aud", "", "require aud to contain this value")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	raw, err := tokenArg(fs)
	if err != nil {
		return err
	}

	v := c.processor.Validator(raw, secret())
	v.Validate()
	if *checkTime && v.Valid() {
		payload, err := c.processor.GetPayload(raw, secret())
		if err != nil {
			return err
		}
		if payload.Has(jwtauth.ClaimExpiration) {
			v.Expiration()
		}
		if payload.Has(jwtauth.ClaimNotBefore) {
			v.NotBefore()
		}
	}
	if *audience != "" {
		v.Audience(*audience)
	}
	if err := v.Err(); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	fmt.Fprintln(c.stdout, "valid")
	return nil
}

func (c *cli) payload(args []string) error {
	fs, secret := c.flagSet("payload")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	raw, err := tokenArg(fs)
	if err != nil {
		return err
	}

	payload, err := c.processor.GetPayload(raw, secret())
	if err != nil {
		return err
	}
	return c.printJSON(payload)
}

// inspection is the JSON document printed by inspect.
type inspection struct {
	Header    jwtauth.Claims `json:"header"`
	Payload   jwtauth.Claims `json:"payload"`
	Valid     bool           `json:"valid"`
	Error     string         `json:"error,omitempty"`
	ExpiresIn int64          `json:"expires_in"`
	UsableIn  int64          `json:"usable_in"`
}

func (c *cli) inspect(args []string) error {
	fs, secret := c.flagSet("inspect")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	raw, err := tokenArg(fs)
	if err != nil {
		return err
	}

	parsed, err := c.processor.Parser(raw, secret()).Parse()
	if err != nil {
		return err
	}

	out := inspection{
		Header:    parsed.Header(),
		Payload:   parsed.Payload(),
		ExpiresIn: parsed.ExpiresIn(),
		UsableIn:  parsed.UsableIn(),
	}
	v := c.processor.Validator(raw, secret())
	out.Valid = v.Validate()
	if !out.Valid {
		out.Error = v.Err().Error()
	}
	return c.printJSON(out)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// claimFlags collects repeated -claim key=value flags. A value that parses
// as JSON is stored decoded, so -claim admin=true yields a boolean and
// -claim aud='["a","b"]' a list; anything else is kept as a string.
type claimFlags map[string]any

func (f claimFlags) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return strings.Join(keys, ",")
}

func (f claimFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("claim %q must be key=value", s)
	}

	var decoded any
	dec := json.NewDecoder(strings.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err == nil && !dec.More() {
		if n, isNumber := decoded.(json.Number); isNumber {
			decoded = numberValue(n)
		}
		f[key] = decoded
		return nil
	}

	f[key] = value
	return nil
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if fl, err := n.Float64(); err == nil {
		return fl
	}
	return n.String()
}
