// Command epicast is a COVID-19 case dashboard with ARIMA forecasts and
// anomaly flags.
//
// It downloads the cumulative confirmed and deaths tables published by
// the JHU CSSE repository, reshapes them to long form, and for a selected
// country and date window shows the latest counts, an ARIMA(5,1,2)
// forecast of cumulative cases and the days whose new cases stand out by
// z-score.
//
// # Features
//
//   - Wide to long reshaping of the upstream tables (dataset)
//   - Per-country daily aggregation with forward fill (dataset, timeseries)
//   - ARIMA forecasts with a model summary and residual diagnostics (arima, forecast, stats)
//   - Z-score anomaly flags on daily new cases (anomaly)
//   - History and anomaly charts, CSV and XLSX forecast tables (report)
//   - HTTP and websocket dashboard with Prometheus metrics (server, metrics)
//
// # Quick Start
//
// Serve the dashboard:
//
//	epicast serve --addr localhost:8080
//
// Render one selection in the terminal and write the report files:
//
//	epicast render --region Italy --start 2020-03-01 --horizon 14 --out ./report
//
// Forecast any date,value series:
//
//	epicast forecast --input series.csv --horizon 7
//
// Offline runs read local copies of the tables:
//
//	epicast render --confirmed-url ./confirmed.csv --deaths-url ./deaths.csv
//
// # Packages
//
//   - arima: Non-seasonal ARIMA models
//   - stats: Autocorrelation and the Ljung-Box test
//   - timeseries: Dated series and daily regularisation
//   - dataset: Wide tables, melting and aggregation
//   - source: Table download
//   - forecast, anomaly: The two analyses of a selection
//   - dashboard: Sessions, selections and rendered views
//   - report, server, cli: Outputs
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package main
