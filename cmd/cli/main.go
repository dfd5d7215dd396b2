package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cambiodesk-cli",
		Short: "Cambio desk CLI tool",
		Long:  `A command line interface for interacting with the cambio desk API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the cambio desk API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(fundCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(rateCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the register balance",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/balance")
		},
	}
}

func fundCmd() *cobra.Command {
	var pesos, dollars string

	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Add cash to the register",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/balance/fund", map[string]any{
				"pesos":   pesos,
				"dollars": dollars,
			})
		},
	}

	cmd.Flags().StringVar(&pesos, "pesos", "0", "Pesos to add")
	cmd.Flags().StringVar(&dollars, "dollars", "0", "Dollars to add")

	return cmd
}

func registerCmd() *cobra.Command {
	var (
		kind           string
		amount         string
		rate           string
		useMarketRate  bool
		commissionRate string
		discountRate   string
		feeBearer      string
		concept        string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a transaction",
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{
				"kind":   kind,
				"amount": amount,
			}
			if rate != "" {
				body["rate"] = rate
			}
			if useMarketRate {
				body["use_market_rate"] = true
			}
			if commissionRate != "" {
				body["commission_rate"] = commissionRate
			}
			if discountRate != "" {
				body["discount_rate"] = discountRate
			}
			if feeBearer != "" {
				body["fee_bearer"] = feeBearer
			}
			if concept != "" {
				body["concept"] = concept
			}

			postJSON("/api/v1/transactions", body)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Transaction kind (buy_dollars, sell_dollars, ...)")
	cmd.Flags().StringVar(&amount, "amount", "", "Transaction amount")
	cmd.Flags().StringVar(&rate, "rate", "", "Exchange rate")
	cmd.Flags().BoolVar(&useMarketRate, "market-rate", false, "Use the market reference rate")
	cmd.Flags().StringVar(&commissionRate, "commission", "", "Commission rate")
	cmd.Flags().StringVar(&discountRate, "discount", "", "Discount rate")
	cmd.Flags().StringVar(&feeBearer, "fee-bearer", "", "Fee bearer (sender or beneficiary)")
	cmd.Flags().StringVar(&concept, "concept", "", "Free-text concept")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func historyCmd() *cobra.Command {
	var (
		kind    string
		concept string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List transactions, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/transactions?limit=%d", limit)
			if kind != "" {
				path += "&kind=" + kind
			}
			if concept != "" {
				path += "&concept=" + concept
			}
			getJSON(path)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by transaction kind")
	cmd.Flags().StringVar(&concept, "concept", "", "Filter by concept substring")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of transactions")

	return cmd
}

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Show the market dollar quote",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/rates/dollar")
		},
	}
}

func ledgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	})

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show realized earnings statistics",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/ledger/stats")
		},
	})

	return ledgerCmd
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	if consistent, ok := result["consistent"].(bool); ok {
		fmt.Printf("Consistent: %v\n", consistent)
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func postJSON(path string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Printf("Failed to encode request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(pretty.String())
}
