// Gaze - drive a wheeled robot by where you look.
// Learns a per-user eye baseline, classifies gaze per frame and sends
// movement commands to the robot over HTTP.
package main

func main() {
	Execute()
}
