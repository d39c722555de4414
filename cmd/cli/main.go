package main

import (
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
		Use:   "lexo-cli",
		Short: "LexoCore CLI tool",
		Long:  `A command line interface for interacting with the LexoCore billing and trust accounting API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LexoCore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Trust ledger commands
	trustCmd := &cobra.Command{
		Use:   "trust",
		Short: "Trust account operations",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <account-id>",
		Short: "Verify the ledger chain of a trust account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			verifyChain(args[0])
		},
	}

	violationsCmd := &cobra.Command{
		Use:   "violations <account-id>",
		Short: "Check a trust account for compliance violations",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkViolations(args[0])
		},
	}

	var reportStart, reportEnd string
	reportCmd := &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Generate a reconciliation report for a period",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			reconciliationReport(args[0], reportStart, reportEnd)
		},
	}
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Period start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "Period end (YYYY-MM-DD)")
	reportCmd.MarkFlagRequired("start")
	reportCmd.MarkFlagRequired("end")

	trustCmd.AddCommand(verifyCmd, violationsCmd, reportCmd)
	rootCmd.AddCommand(trustCmd)

	// Billing commands
	billingCmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing pipeline operations",
	}

	pipelineCmd := &cobra.Command{
		Use:   "pipeline <advocate-id>",
		Short: "Show the billing pipeline for an advocate",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			billingPipeline(args[0])
		},
	}

	billingCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(billingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) (map[string]any, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return result, nil
}

func verifyChain(accountID string) {
	result, err := getJSON(verifyPath(accountID))
	if err != nil {
		fmt.Printf("Chain verification failed: %v\n", err)
		os.Exit(1)
	}

	if valid, ok := result["valid"].(bool); ok && valid {
		fmt.Println("Ledger chain VALID")
		return
	}

	fmt.Println("Ledger chain CORRUPT")
	if discrepancies, ok := result["discrepancies"].([]any); ok {
		for _, d := range discrepancies {
			fmt.Printf("  corrupt entry: %v\n", d)
		}
	}
	os.Exit(1)
}

func checkViolations(accountID string) {
	result, err := getJSON(violationsPath(accountID))
	if err != nil {
		fmt.Printf("Violation check failed: %v\n", err)
		os.Exit(1)
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

func reconciliationReport(accountID, start, end string) {
	result, err := getJSON(reconciliationPath(accountID, start, end))
	if err != nil {
		fmt.Printf("Report generation failed: %v\n", err)
		os.Exit(1)
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

func billingPipeline(advocateID string) {
	result, err := getJSON(pipelinePath(advocateID))
	if err != nil {
		fmt.Printf("Pipeline fetch failed: %v\n", err)
		os.Exit(1)
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

func verifyPath(accountID string) string {
	return "/api/v1/trust-accounts/" + accountID + "/verify"
}

func violationsPath(accountID string) string {
	return "/api/v1/trust-accounts/" + accountID + "/violations"
}

func reconciliationPath(accountID, start, end string) string {
	return fmt.Sprintf("/api/v1/trust-accounts/%s/reconciliation?start=%s&end=%s", accountID, start, end)
}

func pipelinePath(advocateID string) string {
	return "/api/v1/advocates/" + advocateID + "/billing/pipeline"
}
