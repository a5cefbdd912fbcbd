package setup

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hodlboard/hodlboard/internal/domain"
	"github.com/hodlboard/hodlboard/internal/secrets"
	"github.com/hodlboard/hodlboard/internal/services/exchange"
	"github.com/hodlboard/hodlboard/internal/storage/wallets"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal wallet settings wizard: add or remove
// encrypted exchange credentials and on-chain addresses in the wallet store.
func RunTUI(store *wallets.Store) error {
	for {
		fmt.Print("\033[H\033[2J") // Clear screen
		fmt.Println(headerStyle.Render("HODLBOARD WALLET SETTINGS"))
		fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Manage the sources your balances are aggregated from.\n"))

		cfg, err := store.Load()
		if err != nil {
			return err
		}
		printSummary(cfg)

		var action string
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("What would you like to do?").
					Options(
						huh.NewOption("Add exchange credential", "add-cred"),
						huh.NewOption("Add on-chain address", "add-addr"),
						huh.NewOption("Remove exchange credential", "rm-cred"),
						huh.NewOption("Remove on-chain address", "rm-addr"),
						huh.NewOption("Done", "done"),
					).
					Value(&action),
			),
		).Run()
		if err != nil {
			return err
		}

		switch action {
		case "add-cred":
			err = addCredential(store)
		case "add-addr":
			err = addAddress(store)
		case "rm-cred":
			err = removeCredential(store, cfg)
		case "rm-addr":
			err = removeAddress(store, cfg)
		case "done":
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func printSummary(cfg *domain.WalletConfig) {
	if cfg.IsEmpty() {
		fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("No sources configured yet.\n"))
		return
	}
	summary := ""
	for _, name := range sortedStrings(keysOfAPIs(cfg.APIs)) {
		summary += fmt.Sprintf("%s: %d credential(s)\n", name, len(cfg.APIs[name]))
	}
	for _, asset := range sortedAssets(cfg.Addresses) {
		summary += fmt.Sprintf("%s: %d address(es)\n", asset, len(cfg.Addresses[asset]))
	}
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))
}

func addCredential(store *wallets.Store) error {
	var (
		name       string
		apiKey     string
		apiSecret  string
		apiPass    string
		passphrase string
	)

	fmt.Println(stepStyle.Render("ADD EXCHANGE CREDENTIAL"))

	options := make([]huh.Option[string], 0, len(exchange.Names()))
	for _, n := range exchange.Names() {
		options = append(options, huh.NewOption(n, n))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Exchange").
				Options(options...).
				Value(&name),
			huh.NewInput().
				Title("API Key").
				Value(&apiKey).
				Validate(notEmpty),
			huh.NewInput().
				Title("API Secret").
				Value(&apiSecret).
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty),
			huh.NewInput().
				Title("API Passphrase (leave empty if not required)").
				Value(&apiPass).
				EchoMode(huh.EchoModePassword),
			huh.NewInput().
				Title("Encryption passphrase").
				Description("Needed again at aggregation time; it is never stored.").
				Value(&passphrase).
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty),
		),
	).Run()
	if err != nil {
		return err
	}

	cred := domain.Credential{}
	if cred.APIKey, err = secrets.Encrypt(apiKey, passphrase); err != nil {
		return err
	}
	if cred.APISecret, err = secrets.Encrypt(apiSecret, passphrase); err != nil {
		return err
	}
	if apiPass != "" {
		if cred.APIPass, err = secrets.Encrypt(apiPass, passphrase); err != nil {
			return err
		}
	}

	if _, err := store.AddCredential(name, cred); err != nil {
		return err
	}
	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("\n✓ Credential stored"))
	return nil
}

func addAddress(store *wallets.Store) error {
	var (
		asset      string
		address    string
		passphrase string
	)

	fmt.Println(stepStyle.Render("ADD ON-CHAIN ADDRESS"))

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Asset").
				Options(
					huh.NewOption("BTC", "BTC"),
					huh.NewOption("ETH", "ETH"),
					huh.NewOption("VTC", "VTC"),
				).
				Value(&asset),
			huh.NewInput().
				Title("Address").
				Value(&address).
				Validate(notEmpty),
			huh.NewInput().
				Title("Encryption passphrase").
				Description("Needed again at aggregation time; it is never stored.").
				Value(&passphrase).
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty),
		),
	).Run()
	if err != nil {
		return err
	}

	encrypted, err := secrets.Encrypt(address, passphrase)
	if err != nil {
		return err
	}
	if _, err := store.AddAddress(domain.Asset(asset), domain.AddressEntry{Address: encrypted}); err != nil {
		return err
	}
	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("\n✓ Address stored"))
	return nil
}

func removeCredential(store *wallets.Store, cfg *domain.WalletConfig) error {
	var choice string

	options := make([]huh.Option[string], 0)
	for _, name := range sortedStrings(keysOfAPIs(cfg.APIs)) {
		for _, cred := range cfg.APIs[name] {
			key := fmt.Sprintf("%s/%d", name, cred.ID)
			options = append(options, huh.NewOption(key, key))
		}
	}
	if len(options) == 0 {
		return nil
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remove which credential?").
				Options(options...).
				Value(&choice),
		),
	).Run()
	if err != nil {
		return err
	}

	name, id := splitChoice(choice)
	_, err = store.RemoveCredential(name, id)
	return err
}

func removeAddress(store *wallets.Store, cfg *domain.WalletConfig) error {
	var choice string

	options := make([]huh.Option[string], 0)
	for _, asset := range sortedAssets(cfg.Addresses) {
		for _, entry := range cfg.Addresses[asset] {
			key := fmt.Sprintf("%s/%d", asset, entry.ID)
			options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", key, entry.Address), key))
		}
	}
	if len(options) == 0 {
		return nil
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remove which address?").
				Options(options...).
				Value(&choice),
		),
	).Run()
	if err != nil {
		return err
	}

	asset, id := splitChoice(choice)
	_, err = store.RemoveAddress(domain.Asset(asset), id)
	return err
}

func splitChoice(choice string) (string, int) {
	for i := len(choice) - 1; i >= 0; i-- {
		if choice[i] == '/' {
			id, _ := strconv.Atoi(choice[i+1:])
			return choice[:i], id
		}
	}
	return choice, 0
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func keysOfAPIs(m map[string][]domain.Credential) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}

func sortedAssets(m map[domain.Asset][]domain.AddressEntry) []domain.Asset {
	out := make([]domain.Asset, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
