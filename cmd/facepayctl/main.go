// Command facepayctl is the operator CLI: it retrains the classifier from
// stored samples and inspects accounts, transactions, faces and events.
package main

func main() {
	Execute()
}
