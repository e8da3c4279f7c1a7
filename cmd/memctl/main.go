// Command memctl drives a best-fit arena from scripts and random workloads.
package main

func main() {
	execute()
}
