// Package assim runs twin experiments: a synthetic truth is integrated with
// optional model noise, observed with noise, and an ensemble Kalman filter
// tries to track it from those observations alone. Forecast and analysis
// errors are reported as RMSE and RMSV series and their time averages.
package assim
